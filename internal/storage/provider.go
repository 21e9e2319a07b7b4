// Package storage defines the site-tree file-system abstraction used for
// event data sources and generated output.
package storage

import "github.com/starford/pinfall/internal/models"

// Provider is the interface for site-tree file operations. All paths are
// slash-separated and relative to the provider root.
type Provider interface {
	// Root returns the absolute root directory.
	Root() string
	// Abs resolves path against the root, rejecting escapes.
	Abs(path string) (string, error)
	// Exists reports whether a file or directory exists at path.
	Exists(path string) bool
	// Dirs returns the names of the immediate subdirectories of dir.
	Dirs(dir string) ([]string, error)
	// List returns metadata for every regular file under dir.
	List(dir string) ([]models.FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Clean removes everything under dir, leaving dir itself in place.
	Clean(dir string) error
}

// Copy copies every file under srcDir in src to dstDir in dst and returns the
// copied destination paths.
func Copy(src Provider, srcDir string, dst Provider, dstDir string) ([]string, error) {
	files, err := src.List(srcDir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		data, err := src.Read(f.Path)
		if err != nil {
			return out, err
		}
		target := joinRel(dstDir, relTo(srcDir, f.Path))
		if err := dst.Write(target, data); err != nil {
			return out, err
		}
		out = append(out, target)
	}
	return out, nil
}

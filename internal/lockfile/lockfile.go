// Package lockfile produces meta-lock.json, the per-event record of when its
// source files last changed.
package lockfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/starford/pinfall/internal/history"
	"github.com/starford/pinfall/internal/models"
	"github.com/starford/pinfall/internal/storage"
)

// FileName is the lockfile name inside an event directory.
const FileName = "meta-lock.json"

// Generator builds lockfiles from a data tree and its change history.
type Generator struct {
	store   storage.Provider
	history history.Lookup
	logger  *slog.Logger
	now     func() time.Time
}

// NewGenerator returns a Generator. now defaults to time.Now.
func NewGenerator(store storage.Provider, lookup history.Lookup, logger *slog.Logger, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{store: store, history: lookup, logger: logger, now: now}
}

// Generate records the last change of the event directory, its meta.json, and
// every declared data file that exists. Missing data files are skipped with a
// warning.
func (g *Generator) Generate(ctx context.Context, dir string, files []models.FileSpec) models.Lockfile {
	dirRev := g.history.LastModified(ctx, dir)

	lf := models.Lockfile{
		GeneratedAt:  g.now().UTC(),
		LastChangeAt: dirRev.Timestamp.UTC(),
		SourceFiles:  make(map[string]models.SourceFile, len(files)+1),
	}
	if dirRev.Commit != "" {
		commit := dirRev.Commit
		lf.LastChangeCommit = &commit
	}

	metaRev := g.history.LastModified(ctx, path.Join(dir, "meta.json"))
	lf.SourceFiles["meta.json"] = models.SourceFile{LastModified: metaRev.Timestamp.UTC()}

	for _, f := range files {
		p := path.Join(dir, f.File)
		if !g.store.Exists(p) {
			g.logger.Warn("lockfile: file not found", slog.String("path", p))
			continue
		}
		rev := g.history.LastModified(ctx, p)
		lf.SourceFiles[f.File] = models.SourceFile{LastModified: rev.Timestamp.UTC()}
	}
	return lf
}

// Encode renders lf as indented JSON.
func Encode(lf models.Lockfile) ([]byte, error) {
	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("lockfile: encode: %w", err)
	}
	return append(data, '\n'), nil
}

// Write replaces the lockfile at p. Previous content is not merged.
func Write(store storage.Provider, p string, lf models.Lockfile) error {
	data, err := Encode(lf)
	if err != nil {
		return err
	}
	if err := store.Write(p, data); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", p, err)
	}
	return nil
}

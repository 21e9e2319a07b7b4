// Package history looks up when files in the data tree last changed.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// gitDateLayout matches git's %ci output: "2026-01-05 22:56:00 +0000".
const gitDateLayout = "2006-01-02 15:04:05 -0700"

// Revision is the last change recorded for a path. Commit is empty when the
// path has no history.
type Revision struct {
	Commit    string
	Timestamp time.Time
}

// Lookup resolves the last change of a path relative to the data root.
type Lookup interface {
	LastModified(ctx context.Context, path string) Revision
}

// Git reads revisions from `git log`. Paths without history, or any git
// failure, resolve to the current time with no commit.
type Git struct {
	// Dir is the directory git runs in; paths are relative to it.
	Dir    string
	Logger *slog.Logger
	Now    func() time.Time
}

// NewGit returns a Git lookup rooted at dir.
func NewGit(dir string, logger *slog.Logger) *Git {
	return &Git{Dir: dir, Logger: logger, Now: time.Now}
}

// LastModified returns the most recent commit touching path.
func (g *Git) LastModified(ctx context.Context, path string) Revision {
	if path == "" {
		path = "."
	}
	cmd := exec.CommandContext(ctx, "git", "log", "-1", "--format=%H %ci", "--", path)
	cmd.Dir = g.Dir
	out, err := cmd.Output()
	if err != nil {
		if g.Logger != nil {
			g.Logger.Warn("history: git lookup failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return g.fallback()
	}
	rev, ok := parseLog(string(out))
	if !ok {
		return g.fallback()
	}
	return rev
}

func (g *Git) fallback() Revision {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return Revision{Timestamp: now().UTC()}
}

// parseLog parses "<hash> <date>" as printed by --format=%H %ci.
func parseLog(out string) (Revision, bool) {
	out = strings.TrimSpace(out)
	if out == "" {
		return Revision{}, false
	}
	hash, date, found := strings.Cut(out, " ")
	if !found {
		return Revision{}, false
	}
	ts, err := time.Parse(gitDateLayout, strings.TrimSpace(date))
	if err != nil {
		return Revision{}, false
	}
	return Revision{Commit: hash, Timestamp: ts.UTC()}, true
}

// Static returns fixed revisions, keyed by path. Unknown paths get Default.
type Static struct {
	Revisions map[string]Revision
	Default   Revision
}

// LastModified implements Lookup.
func (s Static) LastModified(_ context.Context, path string) Revision {
	if rev, ok := s.Revisions[path]; ok {
		return rev
	}
	return s.Default
}

// String implements fmt.Stringer for log output.
func (r Revision) String() string {
	if r.Commit == "" {
		return r.Timestamp.Format(time.RFC3339)
	}
	return fmt.Sprintf("%s@%s", r.Commit, r.Timestamp.Format(time.RFC3339))
}

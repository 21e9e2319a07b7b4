// Package discovery finds event directories laid out as {slug}/{year}/meta.json.
package discovery

import (
	"cmp"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strconv"

	"github.com/starford/pinfall/internal/models"
	"github.com/starford/pinfall/internal/storage"
)

// MetaFile is the name of the per-event metadata file.
const MetaFile = "meta.json"

// Discover scans the events tree and returns every {slug}/{year} directory that
// holds a meta.json, ordered by year descending then slug ascending.
// Directories without meta.json are skipped with a warning.
func Discover(store storage.Provider, logger *slog.Logger) ([]models.EventRef, error) {
	slugs, err := store.Dirs("")
	if err != nil {
		return nil, fmt.Errorf("discovery: scan events: %w", err)
	}

	var events []models.EventRef
	for _, slug := range slugs {
		years, err := store.Dirs(slug)
		if err != nil {
			return nil, fmt.Errorf("discovery: scan %s: %w", slug, err)
		}
		for _, year := range years {
			dir := path.Join(slug, year)
			metaPath := path.Join(dir, MetaFile)
			if !store.Exists(metaPath) {
				logger.Warn("discovery: skipping directory without meta.json", slog.String("dir", dir))
				continue
			}
			events = append(events, models.EventRef{
				Slug:     slug,
				Year:     year,
				Dir:      dir,
				MetaPath: metaPath,
			})
		}
	}

	Sort(events)
	return events, nil
}

// Sort orders events by numeric year descending, then slug ascending.
// Non-numeric years sort after numeric ones.
func Sort(events []models.EventRef) {
	slices.SortStableFunc(events, func(a, b models.EventRef) int {
		ay, aErr := strconv.Atoi(a.Year)
		by, bErr := strconv.Atoi(b.Year)
		switch {
		case aErr == nil && bErr == nil:
			if c := cmp.Compare(by, ay); c != 0 {
				return c
			}
		case aErr == nil:
			return -1
		case bErr == nil:
			return 1
		}
		if c := cmp.Compare(a.Slug, b.Slug); c != 0 {
			return c
		}
		return cmp.Compare(a.Year, b.Year)
	})
}

// LoadMeta reads and decodes an event's meta.json.
func LoadMeta(store storage.Provider, ref models.EventRef) (models.Meta, error) {
	var meta models.Meta
	data, err := store.Read(ref.MetaPath)
	if err != nil {
		return meta, fmt.Errorf("discovery: read meta: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("discovery: parse %s: %w", ref.MetaPath, err)
	}
	return meta, nil
}

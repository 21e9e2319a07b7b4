// Package models defines the domain types for pinfall.
package models

import (
	"time"

	"github.com/starford/pinfall/internal/table"
)

// EventRef is a discovered event directory: data/events/{slug}/{year}.
type EventRef struct {
	Slug string `json:"slug"`
	Year string `json:"year"`
	// Dir is the event directory relative to the events root.
	Dir string `json:"dir"`
	// MetaPath is the meta.json path relative to the events root.
	MetaPath string `json:"metaPath"`
}

// Meta is the contents of an event's meta.json.
type Meta struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Format      string     `json:"format,omitempty"`
	Type        string     `json:"type,omitempty"`
	Category    string     `json:"category,omitempty"`
	Pattern     string     `json:"pattern,omitempty"`
	Dates       []string   `json:"dates,omitempty"` // dd/mm/yyyy
	Files       []FileSpec `json:"files,omitempty"`
}

// FileSpec declares one data file of an event and how to lay it out.
type FileSpec struct {
	Name string `json:"name"`
	File string `json:"file"`
	table.FileConfig
}

// Lockfile is the build-time fingerprint written to meta-lock.json.
type Lockfile struct {
	GeneratedAt      time.Time             `json:"generatedAt"`
	LastChangeAt     time.Time             `json:"lastChangeAt"`
	LastChangeCommit *string               `json:"lastChangeCommit"`
	SourceFiles      map[string]SourceFile `json:"sourceFiles"`
}

// LastChange is the last data change, or the generation time when no change
// was recorded.
func (lf Lockfile) LastChange() time.Time {
	if !lf.LastChangeAt.IsZero() {
		return lf.LastChangeAt
	}
	return lf.GeneratedAt
}

// SourceFile records when one source file last changed.
type SourceFile struct {
	LastModified time.Time `json:"lastModified"`
}

// FileInfo is lightweight metadata for a file in a storage tree.
type FileInfo struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Badge is a labelled tag shown on event cards and previews.
type Badge struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// PodiumEntry is one of the top three finishers shown on preview images.
type PodiumEntry struct {
	Place   int    `json:"place"`
	Players string `json:"players"`
	Score   string `json:"score"`
}

// Tab is one rendered table built from one data file.
type Tab struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	File    string         `json:"file"`
	Columns []table.Column `json:"columns"`
	// Rows are sorted by DefaultSortKey; RowsOriginal keep file order.
	Rows           []table.Row `json:"rows"`
	RowsOriginal   []table.Row `json:"rowsOriginal"`
	DefaultSortKey string      `json:"defaultSortKey"`
	IsActive       bool        `json:"isActive"`
}

// OGData feeds the preview image of one event.
type OGData struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Badges      []Badge       `json:"badges"`
	Podium      []PodiumEntry `json:"podium"`
	Slug        string        `json:"slug"`
	Year        string        `json:"year"`
	LastUpdated *time.Time    `json:"lastUpdated"`
}

// OGIndex feeds the preview image of the listing page.
type OGIndex struct {
	EventCount      int     `json:"eventCount"`
	LatestEventName *string `json:"latestEventName"`
	LatestEventYear *string `json:"latestEventYear"`
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"slices"

	"github.com/starford/pinfall/internal/csvdata"
	"github.com/starford/pinfall/internal/discovery"
	"github.com/starford/pinfall/internal/lockfile"
	"github.com/starford/pinfall/internal/models"
	"github.com/starford/pinfall/internal/render"
	"github.com/starford/pinfall/internal/table"
)

// Files named after a known layout get that format when meta.json gives
// neither a format nor columns.
var conventionalFormats = map[string]string{
	"results.csv": "results",
	"singles.csv": "singles",
}

// FileResult is the outcome of ingesting one declared data file.
type FileResult struct {
	Spec models.FileSpec
	// Config is Spec's layout with conventional defaults applied.
	Config table.FileConfig
	Data   *csvdata.Result
	Err    error
}

// OK reports whether the file was ingested.
func (r FileResult) OK() bool { return r.Err == nil && r.Data != nil }

// EventResult is everything built for one event.
type EventResult struct {
	Ref      models.EventRef
	Meta     models.Meta
	Files    []FileResult
	Tabs     []models.Tab
	Lockfile models.Lockfile
	OG       models.OGData
}

// TableState is the client-side sorting state of one tab.
type TableState struct {
	Columns        []table.Column `json:"columns"`
	RowsOriginal   []table.Row    `json:"rowsOriginal"`
	Sort           SortState      `json:"sort"`
	DefaultSortKey string         `json:"defaultSortKey"`
}

// SortState is the active sort of a table.
type SortState struct {
	Key string          `json:"key"`
	Dir table.Direction `json:"dir"`
}

// ProcessEvent builds one event: tabs, lockfile, page and preview data.
// Files that fail to ingest are logged and left out.
func (b *Builder) ProcessEvent(ctx context.Context, ref models.EventRef) (*EventResult, error) {
	logger := b.logger.With(slog.String("event", ref.Dir))
	logger.Info("Processing event")

	meta, err := discovery.LoadMeta(b.data, ref)
	if err != nil {
		return nil, err
	}

	res := &EventResult{Ref: ref, Meta: meta}
	res.Files = b.Ingest(ref, meta.Files)
	for _, f := range res.Files {
		if f.Err != nil {
			logger.Warn("Skipping data file",
				slog.String("file", f.Spec.File),
				slog.String("error", f.Err.Error()))
		}
	}
	res.Tabs = b.BuildTabs(res.Files)

	res.Lockfile = b.lockfiles().Generate(ctx, ref.Dir, meta.Files)
	lockPath := path.Join(ref.Dir, lockfile.FileName)
	if err := lockfile.Write(b.data, lockPath, res.Lockfile); err != nil {
		return nil, err
	}

	page, err := b.pages.Event(render.EventPage{
		SiteURL:    b.siteURL,
		Slug:       ref.Slug,
		Year:       ref.Year,
		Meta:       meta,
		Tabs:       res.Tabs,
		TableState: TableStates(res.Tabs),
		Lockfile:   res.Lockfile,
	})
	if err != nil {
		return nil, err
	}
	outDir := path.Join("events", ref.Slug, ref.Year)
	if err := b.dist.Write(path.Join(outDir, "index.html"), page); err != nil {
		return nil, fmt.Errorf("pipeline: write page: %w", err)
	}

	if err := lockfile.Write(b.dist, path.Join(outDir, lockfile.FileName), res.Lockfile); err != nil {
		return nil, fmt.Errorf("pipeline: copy lockfile: %w", err)
	}

	res.OG = OGData(ref, meta, res.Tabs, res.Lockfile)
	og, err := json.MarshalIndent(res.OG, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("pipeline: encode og data: %w", err)
	}
	if err := b.dist.Write(path.Join("og-data", "events", ref.Slug, ref.Year+".json"), og); err != nil {
		return nil, fmt.Errorf("pipeline: write og data: %w", err)
	}

	logger.Info("Event written", slog.Int("tabs", len(res.Tabs)), slog.String("path", outDir))
	return res, nil
}

// Ingest reads every declared file of an event. One result is returned per
// file, in declaration order.
func (b *Builder) Ingest(ref models.EventRef, files []models.FileSpec) []FileResult {
	out := make([]FileResult, 0, len(files))
	for _, spec := range files {
		fr := FileResult{Spec: spec, Config: ResolveConfig(spec)}
		p := path.Join(ref.Dir, spec.File)

		abs, err := b.data.Abs(p)
		if err != nil {
			fr.Err = err
			out = append(out, fr)
			continue
		}
		parsed, err := csvdata.ParseFile(abs)
		if err != nil {
			fr.Err = err
			out = append(out, fr)
			continue
		}
		for _, w := range parsed.Warnings {
			b.logger.Warn("Malformed row",
				slog.String("file", p),
				slog.Int("line", w.Line),
				slog.String("message", w.Message))
		}
		fr.Data = parsed
		out = append(out, fr)
	}
	return out
}

// ResolveConfig applies conventional formats to a file's layout.
func ResolveConfig(spec models.FileSpec) table.FileConfig {
	cfg := spec.FileConfig
	if cfg.Format == "" && cfg.Columns == nil {
		if f, ok := conventionalFormats[spec.File]; ok {
			cfg.Format = f
		}
	}
	return cfg
}

// BuildTabs turns the successfully ingested files into tabs. Rows are sorted
// ascending by the resolved default key; file order is kept in RowsOriginal.
// The first tab is active.
func (b *Builder) BuildTabs(files []FileResult) []models.Tab {
	tabs := []models.Tab{}
	for _, f := range files {
		if !f.OK() {
			continue
		}
		headers := f.Data.Headers
		requested := ""
		if slices.Contains(headers, "Place") {
			requested = "Place"
		} else if len(headers) > 0 {
			requested = headers[0]
		}

		cfg := b.tables.Build(table.TabInput{
			Headers:        headers,
			Rows:           f.Data.Rows,
			File:           f.Config,
			DefaultSortKey: requested,
		})

		rows := cfg.Rows
		if cfg.DefaultSortKey != "" {
			rows = b.sorter.Sort(cfg.Rows, cfg.DefaultSortKey, table.Asc, cfg.Columns)
		}

		n := len(tabs) + 1
		name := f.Spec.Name
		if name == "" {
			name = fmt.Sprintf("Tab %d", n)
		}
		id := render.Slugify(f.Spec.Name)
		if f.Spec.Name == "" {
			id = fmt.Sprintf("tab-%d", n)
		}

		tabs = append(tabs, models.Tab{
			ID:             id,
			Name:           name,
			File:           f.Spec.File,
			Columns:        cfg.Columns,
			Rows:           rows,
			RowsOriginal:   cfg.Rows,
			DefaultSortKey: cfg.DefaultSortKey,
			IsActive:       len(tabs) == 0,
		})
	}
	return tabs
}

// TableStates returns the client-side state of each tab keyed by tab id.
func TableStates(tabs []models.Tab) map[string]TableState {
	out := make(map[string]TableState, len(tabs))
	for _, t := range tabs {
		out[t.ID] = TableState{
			Columns:        t.Columns,
			RowsOriginal:   t.RowsOriginal,
			Sort:           SortState{Key: t.DefaultSortKey, Dir: table.Asc},
			DefaultSortKey: t.DefaultSortKey,
		}
	}
	return out
}

package table

import (
	"fmt"
	"slices"
)

// FileConfig is the per-file table configuration from meta.json.
type FileConfig struct {
	Format string `json:"format,omitempty"`
	// Columns, when non-nil, is used verbatim (even if empty).
	Columns       []ColumnSpec   `json:"columns,omitempty"`
	FormatOptions *FormatOptions `json:"formatOptions,omitempty"`
}

// TabInput is the input to Builder.Build.
type TabInput struct {
	Headers        []string
	Rows           []Row
	File           FileConfig
	DefaultSortKey string
}

// TabConfig is the resolved layout of one data tab.
type TabConfig struct {
	Columns        []Column `json:"columns"`
	Rows           []Row    `json:"rows"`
	DefaultSortKey string   `json:"defaultSortKey"`
}

// Builder resolves column layouts. It holds no per-call state.
type Builder struct {
	hints   Hints
	widths  WidthMap
	presets *Registry
}

// NewBuilder returns a Builder. Nil arguments select the defaults.
func NewBuilder(hints Hints, widths WidthMap, presets *Registry) *Builder {
	if hints == nil {
		hints = DefaultHints
	}
	if widths == nil {
		widths = DefaultWidths
	}
	if presets == nil {
		presets = DefaultRegistry()
	}
	return &Builder{hints: hints, widths: widths, presets: presets}
}

// Build resolves columns with the first matching source winning: explicit
// columns, then a format preset filtered by headers, then one column per
// header.
func (b *Builder) Build(in TabInput) TabConfig {
	var columns []Column
	if in.File.Columns != nil {
		columns = b.FromSpecs(in.File.Columns)
	} else if preset, ok := b.presets.Lookup(in.File.Format); ok {
		columns = b.FromPreset(preset, in.Headers, in.File.FormatOptions)
	} else {
		columns = make([]Column, 0, len(in.Headers))
		for _, h := range in.Headers {
			columns = append(columns, b.Normalize(ColumnSpec{Key: h}))
		}
	}

	return TabConfig{
		Columns:        columns,
		Rows:           in.Rows,
		DefaultSortKey: ResolveSortKey(columns, in.DefaultSortKey),
	}
}

// ResolveSortKey keeps requested when it names a sortable column, else picks
// the first sortable column, else "".
func ResolveSortKey(columns []Column, requested string) string {
	first := ""
	for _, c := range columns {
		if !c.Sortable {
			continue
		}
		if c.Key == requested {
			return requested
		}
		if first == "" {
			first = c.Key
		}
	}
	return first
}

// Normalize fills in label, type, sortable and width for spec.
func (b *Builder) Normalize(spec ColumnSpec) Column {
	label := spec.Label
	if label == "" {
		label = spec.Key
	}
	width := spec.Width
	if width == "" {
		width = b.widths.Class(label)
	}
	return Column{
		Key:      spec.Key,
		Label:    label,
		Type:     b.hints.InferType(spec.Key, spec.Type),
		Sortable: spec.Sortable == nil || *spec.Sortable,
		Width:    width,
	}
}

// FromSpecs normalizes explicitly declared columns.
func (b *Builder) FromSpecs(specs []ColumnSpec) []Column {
	out := make([]Column, 0, len(specs))
	for _, s := range specs {
		out = append(out, b.Normalize(s))
	}
	return out
}

// FromPreset lays out the preset's columns that are present in headers.
func (b *Builder) FromPreset(p Preset, headers []string, opts *FormatOptions) []Column {
	maxPlayers, maxGames := opts.limits()

	base := make(map[string]Column, len(p.BaseColumns))
	for _, spec := range p.BaseColumns {
		if slices.Contains(headers, spec.Key) {
			base[spec.Key] = b.Normalize(spec)
		}
	}

	out := make([]Column, 0, len(p.Layout))
	for _, slot := range p.Layout {
		switch slot {
		case SlotPlayers:
			out = append(out, b.playerColumns(p.PlayersKey, headers, maxPlayers)...)
		case SlotGames:
			out = append(out, b.numbered(p.GamesKey, headers, maxGames, TypeNumber, true)...)
		default:
			if c, ok := base[slot]; ok {
				out = append(out, c)
			}
		}
	}
	return out
}

func (b *Builder) playerColumns(key string, headers []string, limit int) []Column {
	var out []Column
	if slices.Contains(headers, key) {
		out = append(out, Column{
			Key:      key,
			Label:    key,
			Type:     TypeString,
			Sortable: false,
			Width:    b.widths.Class(key),
		})
	}
	return append(out, b.numbered(key, headers, limit, TypeString, false)...)
}

// numbered returns "<base> 1".."<base> limit" columns present in headers.
func (b *Builder) numbered(base string, headers []string, limit int, typ string, sortable bool) []Column {
	var out []Column
	first := fmt.Sprintf("%s 1", base)
	for i := 1; i <= limit; i++ {
		key := fmt.Sprintf("%s %d", base, i)
		if !slices.Contains(headers, key) {
			continue
		}
		out = append(out, Column{
			Key:      key,
			Label:    key,
			Type:     typ,
			Sortable: sortable,
			Width:    b.widths.firstClass(key, first),
		})
	}
	return out
}

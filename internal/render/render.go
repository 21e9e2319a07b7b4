// Package render turns built events into HTML pages using Liquid templates.
package render

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/osteele/liquid"

	"github.com/starford/pinfall/internal/models"
	"github.com/starford/pinfall/internal/table"
)

// Page template names.
const (
	PageEvent    = "event"
	PageIndex    = "index"
	PageNotFound = "404"
)

//go:embed templates/*.liquid
var defaultTemplates embed.FS

//go:embed assets
var assets embed.FS

// Assets returns the scripts the pages load, rooted so that paths match
// their URLs (js/table.js is served at /js/table.js).
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// Renderer holds parsed page templates.
type Renderer struct {
	engine    *liquid.Engine
	templates map[string]*liquid.Template
	overrides fs.FS
	hints     table.Hints
	widths    table.WidthMap
	now       func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithOverrides reads "<page>.liquid" from fsys in preference to the
// built-in templates.
func WithOverrides(fsys fs.FS) Option {
	return func(r *Renderer) { r.overrides = fsys }
}

// WithHints sets the numeric header hints used for cell alignment.
func WithHints(h table.Hints) Option {
	return func(r *Renderer) { r.hints = h }
}

// WithWidths sets the label to width-class table.
func WithWidths(w table.WidthMap) Option {
	return func(r *Renderer) { r.widths = w }
}

// WithClock sets the time source for "now" in pages.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// New parses the page templates.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		engine:    liquid.NewEngine(),
		templates: make(map[string]*liquid.Template),
		hints:     table.DefaultHints,
		widths:    table.DefaultWidths,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.registerFilters()

	for _, name := range []string{PageEvent, PageIndex, PageNotFound} {
		src, err := r.source(name)
		if err != nil {
			return nil, err
		}
		tpl, perr := r.engine.ParseTemplate(src)
		if perr != nil {
			return nil, fmt.Errorf("render: parse %s: %w", name, perr)
		}
		r.templates[name] = tpl
	}
	return r, nil
}

func (r *Renderer) source(name string) ([]byte, error) {
	file := name + ".liquid"
	if r.overrides != nil {
		data, err := fs.ReadFile(r.overrides, file)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("render: read %s: %w", file, err)
		}
	}
	data, err := defaultTemplates.ReadFile("templates/" + file)
	if err != nil {
		return nil, fmt.Errorf("render: read %s: %w", file, err)
	}
	return data, nil
}

func (r *Renderer) registerFilters() {
	// {{ meta.dates | date_range }}
	r.engine.RegisterFilter("date_range", func(v any) string {
		return FormatDateRange(toStrings(v))
	})
	// {{ lockfile.lastChangeAt | last_updated }}
	r.engine.RegisterFilter("last_updated", func(v any) string {
		if s, ok := v.(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return FormatLastUpdated(t)
			}
		}
		return FormatLastUpdated(r.now())
	})
	// {{ col.label | width_class }}
	r.engine.RegisterFilter("width_class", func(label string) string {
		return r.widths.Class(label)
	})
	// {% assign numeric = cell | numeric_cell: col.key %}
	r.engine.RegisterFilter("numeric_cell", func(v any, header string) bool {
		s, _ := v.(string)
		return table.IsNumericValue(s, header, r.hints)
	})
	// {{ meta.format | display_name: "format" }}
	r.engine.RegisterFilter("display_name", func(value string, kind string) string {
		switch kind {
		case "type":
			return DisplayName(value, TypeNames)
		case "category":
			return DisplayName(value, CategoryNames)
		default:
			return DisplayName(value, FormatNames)
		}
	})
}

// EventPage is the input of the per-event results page.
type EventPage struct {
	SiteURL    string
	Slug       string
	Year       string
	Meta       models.Meta
	Tabs       []models.Tab
	TableState any
	Lockfile   models.Lockfile
}

// PageURL is the canonical URL of the event page.
func (p EventPage) PageURL() string {
	return fmt.Sprintf("%s/events/%s/%s/", p.SiteURL, p.Slug, p.Year)
}

// IndexEntry is one event on the listing page.
type IndexEntry struct {
	Slug     string
	Year     string
	Meta     models.Meta
	Lockfile models.Lockfile
}

// Event renders the results page of one event.
func (r *Renderer) Event(p EventPage) ([]byte, error) {
	state, err := json.Marshal(p.TableState)
	if err != nil {
		return nil, fmt.Errorf("render: encode table state: %w", err)
	}
	b, err := bind(map[string]any{
		"meta":     p.Meta,
		"slug":     p.Slug,
		"year":     p.Year,
		"tabs":     p.Tabs,
		"lockfile": p.Lockfile,
		"badges":   Badges(p.Meta),
	})
	if err != nil {
		return nil, err
	}
	b["table_state"] = string(state)
	b["last_updated"] = FormatLastUpdated(p.Lockfile.LastChangeAt)
	b["site_url"] = p.SiteURL
	b["page_url"] = p.PageURL()
	b["og_image_url"] = fmt.Sprintf("%s/og/%s/%s.png", p.SiteURL, p.Slug, p.Year)
	return r.execute(PageEvent, b)
}

// Index renders the event listing. Entries are rendered in the given order.
func (r *Renderer) Index(siteURL string, entries []IndexEntry) ([]byte, error) {
	events := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		m, err := bind(map[string]any{
			"slug":   e.Slug,
			"year":   e.Year,
			"meta":   e.Meta,
			"badges": Badges(e.Meta),
		})
		if err != nil {
			return nil, err
		}
		m["url"] = fmt.Sprintf("/events/%s/%s/", e.Slug, e.Year)
		m["date_range"] = FormatDateRange(e.Meta.Dates)
		m["last_updated"] = FormatLastUpdated(e.Lockfile.LastChange())
		events = append(events, m)
	}
	return r.execute(PageIndex, map[string]any{
		"events":       events,
		"site_url":     siteURL,
		"page_url":     siteURL + "/",
		"og_image_url": siteURL + "/og/index.png",
	})
}

// NotFound renders the 404 page.
func (r *Renderer) NotFound(siteURL string) ([]byte, error) {
	return r.execute(PageNotFound, map[string]any{
		"current_year": r.now().Year(),
		"site_url":     siteURL,
		"page_url":     siteURL + "/404.html",
		"og_image_url": siteURL + "/og/index.png",
	})
}

func (r *Renderer) execute(name string, b map[string]any) ([]byte, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("render: unknown page %q", name)
	}
	out, err := tpl.Render(liquid.Bindings(b))
	if err != nil {
		return nil, fmt.Errorf("render: %s: %w", name, err)
	}
	return out, nil
}

// bind converts values to the plain maps and slices Liquid indexes by their
// JSON field names.
func bind(values map[string]any) (map[string]any, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("render: bindings: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("render: bindings: %w", err)
	}
	return out, nil
}

func toStrings(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, x := range vs {
			out = append(out, strings.TrimSpace(fmt.Sprint(x)))
		}
		return out
	case string:
		if vs == "" {
			return nil
		}
		return []string{vs}
	}
	return nil
}

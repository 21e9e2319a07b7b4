// Package pipeline builds the static results site: it ingests every event's
// data files, writes lockfiles and renders pages, preview data and images.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/pinfall/internal/discovery"
	"github.com/starford/pinfall/internal/history"
	"github.com/starford/pinfall/internal/lockfile"
	"github.com/starford/pinfall/internal/ogimage"
	"github.com/starford/pinfall/internal/render"
	"github.com/starford/pinfall/internal/storage"
	"github.com/starford/pinfall/internal/table"
)

// DefaultSiteURL is used for absolute URLs when no site URL is configured.
const DefaultSiteURL = "http://localhost:3000"

// DefaultConcurrency bounds how many events are processed at once.
const DefaultConcurrency = 4

// Builder runs site builds. The data provider is rooted at the events
// directory and the dist provider at the output directory.
type Builder struct {
	data    storage.Provider
	dist    storage.Provider
	pages   *render.Renderer
	logger  *slog.Logger
	tables  *table.Builder
	sorter  *table.Sorter
	history history.Lookup
	images  *ogimage.Renderer
	cache   ogimage.Cache

	static      storage.Provider
	headers     storage.Provider
	headersPath string

	siteURL     string
	concurrency int
	now         func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithSiteURL sets the absolute base URL of the published site.
func WithSiteURL(u string) Option {
	return func(b *Builder) {
		if u != "" {
			b.siteURL = strings.TrimRight(u, "/")
		}
	}
}

// WithConcurrency bounds parallel event processing.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithTables replaces the tab column builder.
func WithTables(t *table.Builder) Option {
	return func(b *Builder) { b.tables = t }
}

// WithSorter replaces the row sorter.
func WithSorter(s *table.Sorter) Option {
	return func(b *Builder) { b.sorter = s }
}

// WithHistory sets the file history lookup used for lockfiles.
func WithHistory(h history.Lookup) Option {
	return func(b *Builder) { b.history = h }
}

// WithImageCache sets the cache consulted before drawing preview images.
func WithImageCache(c ogimage.Cache) Option {
	return func(b *Builder) { b.cache = c }
}

// WithStatic copies every file of p into the output root.
func WithStatic(p storage.Provider) Option {
	return func(b *Builder) { b.static = p }
}

// WithHeaders copies the host headers file at path in p to dist/_headers.
func WithHeaders(p storage.Provider, path string) Option {
	return func(b *Builder) {
		b.headers = p
		b.headersPath = path
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// New returns a Builder.
func New(data, dist storage.Provider, pages *render.Renderer, logger *slog.Logger, opts ...Option) *Builder {
	b := &Builder{
		data:        data,
		dist:        dist,
		pages:       pages,
		logger:      logger,
		tables:      table.NewBuilder(nil, nil, nil),
		sorter:      table.NewSorter(table.DefaultHints),
		images:      ogimage.NewRenderer(),
		cache:       ogimage.NewMemoryCache(),
		siteURL:     DefaultSiteURL,
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.history == nil {
		b.history = history.NewGit(data.Root(), logger)
	}
	return b
}

// Report summarizes a finished build.
type Report struct {
	Events   []*EventResult
	Duration time.Duration
}

// Build regenerates the whole output tree. Events are processed in
// parallel; a failure of any event aborts the build.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := b.now()

	if err := b.dist.Clean(""); err != nil {
		return nil, fmt.Errorf("pipeline: clean dist: %w", err)
	}

	refs, err := discovery.Discover(b.data, b.logger)
	if err != nil {
		return nil, err
	}
	b.logger.Info("Discovered events", slog.Int("count", len(refs)))
	if len(refs) == 0 {
		b.logger.Warn("No events found, writing an empty index")
	}

	results := make([]*EventResult, len(refs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			res, err := b.ProcessEvent(gCtx, ref)
			if err != nil {
				return fmt.Errorf("pipeline: event %s: %w", ref.Dir, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortByDate(results)

	steps := []func([]*EventResult) error{
		b.writeIndex,
		b.writeNotFound,
		b.writeOGIndex,
		b.writeImages,
		b.writeSitemap,
		b.writeAssets,
		b.copyStatic,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step(results); err != nil {
			return nil, err
		}
	}

	report := &Report{Events: results, Duration: b.now().Sub(start)}
	b.logger.Info("Build complete",
		slog.Int("events", len(results)),
		slog.String("duration", report.Duration.String()),
		slog.String("output", b.dist.Root()))
	return report, nil
}

func (b *Builder) lockfiles() *lockfile.Generator {
	return lockfile.NewGenerator(b.data, b.history, b.logger, b.now)
}

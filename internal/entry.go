// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/starford/pinfall/internal/api"
	"github.com/starford/pinfall/internal/pipeline"
	"github.com/starford/pinfall/internal/render"
	"github.com/starford/pinfall/internal/share"
	"github.com/starford/pinfall/internal/share/redisstore"
	"github.com/starford/pinfall/internal/share/sqlitestore"
	"github.com/starford/pinfall/internal/storage"
	"github.com/starford/pinfall/internal/table"
)

var errConfigRequired = errors.New("config is required")

// purgeInterval is how often expired SQLite keys are deleted.
const purgeInterval = time.Hour

// Build generates the static site once.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg.App)

	siteURL := cfg.Site.URL
	if app.siteURL != "" {
		siteURL = app.siteURL
	}

	logger.Info("Configuration loaded",
		slog.String("data_dir", cfg.Site.DataDir),
		slog.String("dist_dir", cfg.Site.DistDir),
		slog.String("site_url", siteURL),
		slog.String("log_level", cfg.App.LogLevel.String()))

	builder, err := newPipeline(cfg.Site, siteURL, logger)
	if err != nil {
		return err
	}
	if _, err := builder.Build(ctx); err != nil {
		logger.Error("Build failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func newPipeline(cfg SiteConfig, siteURL string, logger *slog.Logger) (*pipeline.Builder, error) {
	data, err := storage.NewFS(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init data dir: %w", err)
	}
	dist, err := storage.EnsureFS(cfg.DistDir)
	if err != nil {
		return nil, fmt.Errorf("init dist dir: %w", err)
	}

	var renderOpts []render.Option
	opts := []pipeline.Option{
		pipeline.WithSiteURL(siteURL),
		pipeline.WithConcurrency(cfg.Concurrency),
	}

	if len(cfg.NumericHints) > 0 {
		hints := table.Hints(cfg.NumericHints)
		renderOpts = append(renderOpts, render.WithHints(hints))
		opts = append(opts,
			pipeline.WithTables(table.NewBuilder(hints, nil, nil)),
			pipeline.WithSorter(table.NewSorter(hints)))
	}
	if isDir(cfg.TemplatesDir) {
		logger.Info("Using template overrides", slog.String("dir", cfg.TemplatesDir))
		renderOpts = append(renderOpts, render.WithOverrides(os.DirFS(cfg.TemplatesDir)))
	}
	pages, err := render.New(renderOpts...)
	if err != nil {
		return nil, fmt.Errorf("init templates: %w", err)
	}

	if isDir(cfg.StaticDir) {
		static, err := storage.NewFS(cfg.StaticDir)
		if err != nil {
			return nil, fmt.Errorf("init static dir: %w", err)
		}
		opts = append(opts, pipeline.WithStatic(static))
	}
	if cfg.HeadersFile != "" {
		if dir, err := storage.NewFS(filepath.Dir(cfg.HeadersFile)); err == nil {
			opts = append(opts, pipeline.WithHeaders(dir, filepath.Base(cfg.HeadersFile)))
		}
	}

	return pipeline.New(data, dist, pages, logger, opts...), nil
}

// Run starts the share-link server with the given options. The generated
// site is served from site.dist_dir when it exists.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg.App)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("share_store", cfg.Share.Store),
		slog.String("share_base_url", cfg.Share.BaseURL),
		slog.String("log_level", cfg.App.LogLevel.String()))

	backend, err := openShareBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.close()

	svcOpts := []share.Option{
		share.WithAnalytics(backend.analytics),
		share.WithAllowedHosts(cfg.Share.AllowedHosts...),
		share.WithLinkTTL(cfg.Share.LinkTTL),
		share.WithSeenTTL(cfg.Share.SeenTTL),
		share.WithLogger(logger),
	}
	if cfg.Share.Dedupe {
		svcOpts = append(svcOpts, share.WithSeenStore(backend.seen))
	}
	svc := share.NewService(backend.links, cfg.Share.BaseURL, svcOpts...)

	handler := newHandler(cfg, svc, backend.ping, logger)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if backend.purge != nil {
		g.Go(func() error {
			backend.purge(gCtx, logger)
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// newHandler assembles middleware, health checks and the share and site
// routes.
func newHandler(cfg *Config, svc api.ShareService, ping func(context.Context) error, logger *slog.Logger) http.Handler {
	routerCfg := api.RouterConfig{
		AuthEnabled: cfg.Auth.AuthEnabled(),
		AuthToken:   cfg.Auth.Token,
		CORSOrigins: cfg.Share.CORSOrigins,
	}
	if !routerCfg.AuthEnabled {
		logger.Warn("Auth disabled, link revoke and stats routes are not served")
	}
	if isDir(cfg.Site.DistDir) {
		routerCfg.SiteDir = cfg.Site.DistDir
	} else {
		logger.Warn("Site output not found, serving share routes only", slog.String("dist_dir", cfg.Site.DistDir))
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := ping(req.Context()); err != nil {
			logger.Warn("Readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/", api.NewRouter(svc, routerCfg))
	return r
}

// errShutdown cancels the group so background loops stop with the server.
var errShutdown = errors.New("shutdown")

// shareBackend is the storage behind the share service.
type shareBackend struct {
	links     share.Store
	seen      share.Store
	analytics share.Analytics
	ping      func(context.Context) error
	purge     func(context.Context, *slog.Logger)
	close     func()
}

func openShareBackend(ctx context.Context, cfg *Config, logger *slog.Logger) (*shareBackend, error) {
	logSink := share.LogAnalytics{Logger: logger}

	switch cfg.Share.Store {
	case StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		stream := cfg.Redis.Stream
		if stream == "" {
			stream = redisstore.DefaultStream
		}
		return &shareBackend{
			links:     redisstore.New(client, "link:"),
			seen:      redisstore.New(client, ""),
			analytics: share.Multi{logSink, redisstore.NewStream(client, stream, cfg.Redis.StreamMaxLen)},
			ping:      func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close:     func() { _ = client.Close() },
		}, nil

	default:
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		db, err := sqlitestore.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("init share store: %w", err)
		}
		return &shareBackend{
			links:     db.Namespace(sqlitestore.NamespaceLinks),
			seen:      db.Namespace(sqlitestore.NamespaceSeen),
			analytics: share.Multi{logSink, db},
			ping:      db.Ping,
			purge: func(ctx context.Context, logger *slog.Logger) {
				purgeLoop(ctx, db, logger)
			},
			close: func() { _ = db.Close() },
		}, nil
	}
}

func purgeLoop(ctx context.Context, db *sqlitestore.DB, logger *slog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.Purge(ctx)
			if err != nil {
				logger.Warn("Purge failed", slog.String("error", err.Error()))
				continue
			}
			logger.Debug("Purged expired keys", slog.Int64("count", n))
		}
	}
}

func newLogger(cfg ApplicationConfig) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	if cfg.LogFormat == LogFormatText {
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func isDir(p string) bool {
	if p == "" {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

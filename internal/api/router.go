package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RouterConfig controls optional parts of the router.
type RouterConfig struct {
	// AuthEnabled mounts link administration behind a Bearer token. Without
	// it the admin routes are not served.
	AuthEnabled bool
	AuthToken   string
	// CORSOrigins may call the API from a browser. Empty means same-origin
	// only.
	CORSOrigins []string
	// SiteDir, when set, is served for every path no route matches.
	SiteDir string
}

// NewRouter creates a chi router with the share routes and, optionally, the
// generated site mounted.
func NewRouter(svc ShareService, cfg RouterConfig) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	// go-chi/cors allows every origin for an empty list.
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Post("/api/share/create", h.CreateShare)

	// Link administration. Tokens are public in every share URL, so these
	// routes exist only behind auth.
	if cfg.AuthEnabled {
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(true, cfg.AuthToken))
			r.Delete("/api/share/{token}", h.RevokeShare)
			r.Get("/api/share/{token}/stats", h.ShareStats)
		})
	}

	// Redirects. Bare /s and /s/ reach the handler with an empty token.
	r.Get("/s/{token}", h.Redeem)
	r.Get("/s", h.Redeem)
	r.Get("/s/", h.Redeem)

	if cfg.SiteDir != "" {
		r.NotFound(SiteHandler(cfg.SiteDir).ServeHTTP)
	}
	return r
}

// Package http provides the HTTP delivery layer for the URL shortener service.
// This package contains the HTTP handlers and related types used for processing
// incoming requests, validating input, and formatting responses.
package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig holds the optional parts of the router.
type RouterConfig struct {
	// BaseURL prefixes short codes in responses.
	BaseURL string
	// DocsPath is the swagger.yml served under /docs.
	DocsPath string
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// Middlewares run after the standard chain, before routing.
	Middlewares []func(http.Handler) http.Handler
}

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the URL shortener API.
func NewRouter(
	logger *httplog.Logger,
	cfg RouterConfig,
	shortenUC shortenUseCase,
	redirectUC redirectUseCase,
	statsUC statsUseCase,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"POST", "GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger, []string{"/health", "/metrics"}))
	r.Use(middleware.Recoverer)
	r.Use(cfg.Middlewares...)

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	validate := newValidator()
	urlH := newURLHandler(baseURL, shortenUC, redirectUC, validate)
	statsH := newStatsHandler(baseURL, statsUC)
	limited := rateLimit(statsUC)

	r.Get("/health", handleHealth)

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	if cfg.DocsPath != "" {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/docs/swagger.yml"),
		))

		r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, cfg.DocsPath)
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(limited).Post("/shorten", urlH.shortenURL)
		r.Get("/info/{shortCode}", urlH.getURLInfo)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/", statsH.listURLStats)
			r.Get("/{shortCode}", statsH.getURLStats)
		})

		r.Get("/cache/stats", statsH.getCacheStats)
		r.Post("/cache/clear", statsH.clearCache)
		r.Get("/rate-limit/stats", statsH.getRateLimitStats)
	})

	r.Get("/{shortCode}", urlH.redirect)
	r.With(limited).Delete("/{shortCode}", urlH.deleteURL)

	return r
}

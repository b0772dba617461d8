package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Adithya-Monish-Kumar-K/wordsearch/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordsearch/pkg/middleware"
)

// RouterConfig carries the collaborators the router wires in. Metrics,
// Limiter and Checker may be nil.
type RouterConfig struct {
	Metrics        *metrics.Metrics
	Limiter        *ratelimit.Limiter
	Checker        *health.Checker
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP handler for the API server.
//
// Route table:
//
//	POST /api/v1/solve              solve a puzzle (rate limited)
//	GET  /api/v1/dictionary/prefix  words starting with ?p=
//	GET  /api/v1/dictionary/stats   loaded dictionary summary
//	GET  /api/v1/cache/stats        solve cache hit rate
//	POST /api/v1/cache/invalidate   drop every cached solution
//	GET  /health/live, /health/ready
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(chimw.Recoverer)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	if cfg.Checker != nil {
		r.Get("/health/live", cfg.Checker.LiveHandler())
		r.Get("/health/ready", cfg.Checker.ReadyHandler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.Limiter != nil {
				r.Use(ratelimit.Middleware(cfg.Limiter))
			}
			if cfg.RequestTimeout > 0 {
				r.Use(middleware.Timeout(cfg.RequestTimeout))
			}
			r.Post("/solve", h.Solve)
		})
		r.Get("/dictionary/prefix", h.Prefix)
		r.Get("/dictionary/stats", h.DictionaryStats)
		r.Get("/cache/stats", h.CacheStats)
		r.Post("/cache/invalidate", h.CacheInvalidate)
	})
	return r
}

package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drafthook/drafthook/backend/internal/setup"
	backend_mw "github.com/drafthook/drafthook/backend/internal/middleware"
	mw "github.com/drafthook/drafthook/shared/middleware"
	"github.com/drafthook/drafthook/shared/middleware/metrics"
	rl "github.com/drafthook/drafthook/shared/middleware/ratelimiter"
)

// New creates and configures the history API router.
// IMPORTANT! ratelimiters set with .Use limit requests for all endpoints combined in that group
func New(deps *setup.Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)

	// the history view runs in a browser served from elsewhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:8081"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	h := deps.Handler

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api/history", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit(rl.Rps10(), mw.GetIP)) // 10 rps per IP
			r.Use(mw.GlobalRateLimit(rl.Rps100()))    // 100 global RPS
			r.Get("/", h.GetHistory)
			r.Post("/", h.SaveHistory)
		})

		r.Group(func(r chi.Router) {
			r.Use(backend_mw.AdminOnly(deps.Jwt))
			r.Use(mw.RateLimit(rl.New(1, 1, 1*time.Hour), mw.GetIP)) // 1 per second by IP
			r.Delete("/", h.ClearHistory)
		})
	})

	return r
}

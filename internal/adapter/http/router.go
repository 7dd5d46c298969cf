package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/gosettle/internal/adapter/http/handler"
	"github.com/iho/gosettle/internal/adapter/http/middleware"
	"github.com/iho/gosettle/internal/infrastructure/metrics"
	"github.com/iho/gosettle/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	IntentHandler      *handler.IntentHandler
	InstructionHandler *handler.InstructionHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	Metrics            *metrics.Metrics
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Instruction submission
		r.Post("/instructions", cfg.InstructionHandler.Submit)

		// Intents
		r.Route("/intents", func(r chi.Router) {
			r.Get("/", cfg.IntentHandler.List)
			r.Get("/stats", cfg.IntentHandler.Stats)
			r.Get("/{id}", cfg.IntentHandler.Get)
			r.Post("/{id}/dispute", cfg.IntentHandler.Dispute)
			r.Post("/{id}/confirm", cfg.IntentHandler.Confirm)
		})
	})

	return r
}

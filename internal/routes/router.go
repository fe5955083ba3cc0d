package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"helping-hands/shiftdesk/internal/api"
	"helping-hands/shiftdesk/internal/logging"
	"helping-hands/shiftdesk/internal/middleware"
)

// RegisterRoutes builds the HTTP handler. gatherer serves /metrics; pass
// nil to leave the endpoint out.
func RegisterRoutes(deps *api.Dependencies, gatherer prometheus.Gatherer, upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Username"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(deps.HealthProbes(), upSince))

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	handlers := api.NewHandlers(deps)
	limiter := middleware.NewRateLimiter(deps.Config.RateLimit)

	RegisterAPIRoutes(r, deps, handlers, limiter)

	logging.Info("Router initialized",
		"rate_limit_strategy", deps.Config.RateLimit.Strategy,
		"trust_header", deps.Config.Auth.TrustHeader,
	)
	return r
}

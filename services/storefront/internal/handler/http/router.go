package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pr-poehali-dev/fashion-store-creation/pkg/health"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/middleware"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/service"
)

// ServiceName labels metrics and spans.
const ServiceName = "storefront"

// NewRouter creates a chi router with the storefront pages and JSON API.
func NewRouter(svc *service.Storefront, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	pages := NewPageHandler(svc, logger)
	api := NewAPIHandler(svc, logger)

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Visitor)

		// Pages
		r.Get("/", pages.Catalog)
		r.Post("/cart/items", pages.AddToCart)
		r.Post("/cart/items/{productId}/{size}/remove", pages.RemoveFromCart)
		r.Post("/favorites/{productId}/toggle", pages.ToggleFavorite)
		r.Get("/products/{productId}/reviews", pages.Reviews)
		r.Post("/products/{productId}/reviews", pages.SubmitReview)

		// JSON API
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Get("/catalog", api.GetCatalog)

			r.Get("/cart", api.GetCart)
			r.Post("/cart/items", api.AddToCart)
			r.Delete("/cart/items/{productId}/{size}", api.RemoveFromCart)

			r.Get("/favorites", api.GetFavorites)
			r.Post("/favorites/{productId}/toggle", api.ToggleFavorite)

			r.Get("/products/{productId}/reviews", api.GetReviews)
			r.Post("/products/{productId}/reviews", api.SubmitReview)
		})
	})

	return r
}

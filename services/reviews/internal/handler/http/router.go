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
	"github.com/pr-poehali-dev/fashion-store-creation/services/reviews/internal/service"
)

// ServiceName labels metrics and spans.
const ServiceName = "reviews"

// NewRouter creates a chi router with all review service routes registered.
// limiter may be nil to disable submission rate limiting.
func NewRouter(
	reviewService *service.ReviewService,
	healthHandler *health.Handler,
	limiter *middleware.RateLimiter,
	loc *time.Location,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()
	reviewHandler := NewReviewHandler(reviewService, loc, logger)

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))

	r.MethodNotAllowed(reviewHandler.MethodNotAllowed)
	r.NotFound(reviewHandler.NotFound)

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Review endpoint
	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", reviewHandler.ListReviews)
		if limiter != nil {
			r.With(limiter.Handler).Post("/", reviewHandler.CreateReview)
		} else {
			r.Post("/", reviewHandler.CreateReview)
		}
	})

	return r
}

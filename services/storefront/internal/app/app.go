package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker/v2"

	"github.com/pr-poehali-dev/fashion-store-creation/pkg/health"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/httpclient"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/middleware"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/tracing"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/catalog"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/config"
	handler "github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/handler/http"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/reviewclient"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/service"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/state"
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	storefront     *service.Storefront
	sessions       *state.Sessions
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing(handler.ServiceName))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Review endpoint client: pooled transport behind a circuit breaker.
	breaker := httpclient.NewCircuitBreakerClient(httpclient.New(cfg.HTTPClient()), cfg.Breaker(), logger)
	reviews, err := reviewclient.New(cfg.ReviewsAPIURL, breaker, logger)
	if err != nil {
		_ = tracerShutdown(ctx)
		return nil, fmt.Errorf("create review client: %w", err)
	}
	logger.Info("review client initialized", slog.String("url", cfg.ReviewsAPIURL))

	// The storefront keeps working with static ratings while reviews are down.
	healthHandler := health.NewHandler()
	healthHandler.RegisterOptional("reviews", func(context.Context) error {
		if breaker.State() == gobreaker.StateOpen {
			return httpclient.ErrCircuitOpen
		}
		return nil
	})

	// Build the dependency graph.
	sessions := state.NewSessions(cfg.SessionIdle())
	storefront := service.NewStorefront(catalog.Default(), sessions, state.NewReviewBook(), reviews, logger)

	// HTTP router.
	router := handler.NewRouter(storefront, healthHandler, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           withPprof(router, cfg.PprofAllowedCIDRs, logger),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		storefront:     storefront,
		sessions:       sessions,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server, loads reviews for every product in the
// background and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.ReviewsTimeoutSeconds)*time.Second)
		defer cancel()
		a.storefront.LoadAllReviews(loadCtx)
		a.logger.Info("initial review load finished")
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.sessions.Stop()

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// withPprof serves the profiler next to router, restricted to allowed.
func withPprof(router http.Handler, allowed []string, logger *slog.Logger) http.Handler {
	root := chi.NewRouter()
	middleware.RegisterPprof(root, allowed, logger)
	root.Mount("/", router)
	return root
}

package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pr-poehali-dev/fashion-store-creation/pkg/httputil"
)

// Checker probes a single dependency.
type Checker func(ctx context.Context) error

// Status is the health of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Response is the body written by the health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one checker.
type CheckResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

type registration struct {
	check    Checker
	optional bool
}

// Handler serves liveness and readiness probes.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]registration
	timeout  time.Duration
}

// NewHandler creates a handler whose readiness checks share a 5s deadline.
func NewHandler() *Handler {
	return &Handler{
		checkers: make(map[string]registration),
		timeout:  5 * time.Second,
	}
}

// Register adds a checker whose failure makes the service not ready.
func (h *Handler) Register(name string, checker Checker) {
	h.register(name, registration{check: checker})
}

// RegisterOptional adds a checker whose failure only degrades readiness.
// The storefront keeps serving its catalog while the review endpoint is down.
func (h *Handler) RegisterOptional(name string, checker Checker) {
	h.register(name, registration{check: checker, optional: true})
}

func (h *Handler) register(name string, reg registration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = reg
}

// LivenessHandler reports 200 while the process is running.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, Response{Status: StatusUp, Timestamp: time.Now().UTC()})
	}
}

// ReadinessHandler runs all checkers concurrently. Any failed required
// checker yields 503; failed optional checkers yield 200 with "degraded".
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		h.mu.RLock()
		regs := make(map[string]registration, len(h.checkers))
		for k, v := range h.checkers {
			regs[k] = v
		}
		h.mu.RUnlock()

		var mu sync.Mutex
		checks := make(map[string]CheckResult, len(regs))
		overall := StatusUp

		var g errgroup.Group
		for name, reg := range regs {
			g.Go(func() error {
				err := reg.check(ctx)

				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					checks[name] = CheckResult{Status: StatusUp}
					return nil
				}
				checks[name] = CheckResult{Status: StatusDown, Error: err.Error()}
				switch {
				case !reg.optional:
					overall = StatusDown
				case overall == StatusUp:
					overall = StatusDegraded
				}
				return nil
			})
		}
		_ = g.Wait()

		status := http.StatusOK
		if overall == StatusDown {
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, Response{Status: overall, Timestamp: time.Now().UTC(), Checks: checks})
	}
}

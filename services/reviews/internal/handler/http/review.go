package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/pr-poehali-dev/fashion-store-creation/pkg/errors"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/httputil"
	"github.com/pr-poehali-dev/fashion-store-creation/services/reviews/internal/service"
)

// ReviewHandler serves the review endpoint. Its error bodies use the flat
// {"error": "..."} shape browsers of the storefront expect.
type ReviewHandler struct {
	service  *service.ReviewService
	location *time.Location
	logger   *slog.Logger
}

// NewReviewHandler creates a review handler that renders dates in loc.
func NewReviewHandler(svc *service.ReviewService, loc *time.Location, logger *slog.Logger) *ReviewHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReviewHandler{
		service:  svc,
		location: loc,
		logger:   logger,
	}
}

// --- Request / response DTOs ---

// CreateReviewRequest is the JSON body of a review submission.
type CreateReviewRequest struct {
	ProductID int    `json:"product_id"`
	UserName  string `json:"user_name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// ReviewResponse is one review as rendered to clients.
type ReviewResponse struct {
	ID       int64  `json:"id"`
	UserName string `json:"userName"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Date     string `json:"date"`
}

// ListReviewsResponse is the body of GET /reviews.
type ListReviewsResponse struct {
	Reviews       []ReviewResponse `json:"reviews"`
	AverageRating float64          `json:"average_rating"`
	TotalReviews  int              `json:"total_reviews"`
}

// CreateReviewResponse is the body of a successful POST /reviews.
type CreateReviewResponse struct {
	Success  bool   `json:"success"`
	ReviewID int64  `json:"review_id"`
	Date     string `json:"date"`
	Message  string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// --- Handlers ---

// ListReviews handles GET /reviews?product_id={id}.
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("product_id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	productID, err := strconv.Atoi(raw)
	if err != nil || productID < 1 {
		writeError(w, http.StatusBadRequest, "product_id must be a positive integer")
		return
	}

	list, err := h.service.ListReviews(r.Context(), productID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := ListReviewsResponse{
		Reviews:       make([]ReviewResponse, 0, len(list.Reviews)),
		AverageRating: list.Summary.AverageRating,
		TotalReviews:  list.Summary.TotalReviews,
	}
	for i := range list.Reviews {
		rv := &list.Reviews[i]
		resp.Reviews = append(resp.Reviews, ReviewResponse{
			ID:       rv.ID,
			UserName: rv.UserName,
			Rating:   rv.Rating,
			Comment:  rv.Comment,
			Date:     rv.Date(h.location),
		})
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// CreateReview handles POST /reviews.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	review, err := h.service.CreateReview(r.Context(), &service.CreateReviewInput{
		ProductID: req.ProductID,
		UserName:  req.UserName,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, CreateReviewResponse{
		Success:  true,
		ReviewID: review.ID,
		Date:     review.Date(h.location),
		Message:  "Review added successfully",
	})
}

// MethodNotAllowed answers methods the endpoint does not serve.
func (h *ReviewHandler) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// NotFound answers unknown paths.
func (h *ReviewHandler) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

// fail writes client errors verbatim and hides everything else behind a 500.
func (h *ReviewHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		writeError(w, appErr.Status, appErr.Message)
		return
	}

	h.logger.ErrorContext(r.Context(), "review request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	httputil.WriteJSON(w, status, errorResponse{Error: msg})
}

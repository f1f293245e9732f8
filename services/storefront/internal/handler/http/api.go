package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/pr-poehali-dev/fashion-store-creation/pkg/errors"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/httputil"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/validator"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/domain"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/service"
)

// APIHandler serves the storefront JSON API.
type APIHandler struct {
	service *service.Storefront
	logger  *slog.Logger
}

// NewAPIHandler creates a new JSON API handler.
func NewAPIHandler(svc *service.Storefront, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddToCartRequest is the JSON body for adding a product to the cart.
type AddToCartRequest struct {
	ProductID int    `json:"product_id" validate:"required,gte=1"`
	Size      string `json:"size" validate:"notblank"`
}

// ToggleFavoriteResponse reports the new favorite flag.
type ToggleFavoriteResponse struct {
	ProductID  int  `json:"product_id"`
	IsFavorite bool `json:"is_favorite"`
}

// --- Handlers ---

// GetCatalog handles GET /api/v1/catalog?category=&q=
func (h *APIHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: h.service.CatalogView(VisitorID(r.Context()), q.Get("category"), q.Get("q")),
	})
}

// GetCart handles GET /api/v1/cart
func (h *APIHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.service.CartView(VisitorID(r.Context()))})
}

// AddToCart handles POST /api/v1/cart/items
func (h *APIHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AddToCartRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.AddToCart(VisitorID(r.Context()), req.ProductID, req.Size); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: h.service.CartView(VisitorID(r.Context()))})
}

// RemoveFromCart handles DELETE /api/v1/cart/items/{productId}/{size}
func (h *APIHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	h.service.RemoveFromCart(VisitorID(r.Context()), productID, chi.URLParam(r, "size"))
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.service.CartView(VisitorID(r.Context()))})
}

// GetFavorites handles GET /api/v1/favorites
func (h *APIHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.service.FavoritesView(VisitorID(r.Context()))})
}

// ToggleFavorite handles POST /api/v1/favorites/{productId}/toggle
func (h *APIHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	on, err := h.service.ToggleFavorite(VisitorID(r.Context()), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: ToggleFavoriteResponse{ProductID: productID, IsFavorite: on},
	})
}

// GetReviews handles GET /api/v1/products/{productId}/reviews. The product's
// reviews are re-fetched first; a failed fetch serves the last known data.
func (h *APIHandler) GetReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	if _, exists := h.service.Catalog().Get(productID); !exists {
		httputil.WriteError(w, r, apperrors.NotFound("product", chi.URLParam(r, "productId")), h.logger)
		return
	}

	h.service.LoadReviews(r.Context(), productID)

	dialog, err := h.service.ReviewDialog(productID, domain.NewReviewForm())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: dialog})
}

// SubmitReview handles POST /api/v1/products/{productId}/reviews
func (h *APIHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	form := domain.NewReviewForm()
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	submitted, err := h.service.SubmitReview(r.Context(), productID, &form)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !submitted {
		httputil.WriteError(w, r, apperrors.ServiceUnavailable("review was not accepted, try again later"), h.logger)
		return
	}

	dialog, err := h.service.ReviewDialog(productID, form)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: dialog})
}

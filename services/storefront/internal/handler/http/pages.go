package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/pr-poehali-dev/fashion-store-creation/pkg/errors"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/logger"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/validator"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/domain"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Message shown above the review form when required fields are missing.
const msgReviewIncomplete = "Укажите имя, оценку от 1 до 5 и текст отзыва"

var templateFuncs = template.FuncMap{
	"stars": func(n int) string {
		if n < 0 {
			n = 0
		}
		if n > domain.MaxRating {
			n = domain.MaxRating
		}
		return strings.Repeat("★", n) + strings.Repeat("☆", domain.MaxRating-n)
	},
	"ratings": func() []int {
		out := make([]int, 0, domain.MaxRating)
		for n := domain.MinRating; n <= domain.MaxRating; n++ {
			out = append(out, n)
		}
		return out
	},
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// pageData is what every page template receives.
type pageData struct {
	Title     string
	Cart      service.CartView
	Favorites service.FavoritesView
	Catalog   service.CatalogView
	Dialog    service.ReviewDialog
	FormError string
}

// PageHandler serves the server-rendered storefront.
type PageHandler struct {
	service *service.Storefront
	logger  *slog.Logger
	catalog *template.Template
	reviews *template.Template
}

// NewPageHandler creates the HTML handler and parses its templates.
func NewPageHandler(svc *service.Storefront, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		service: svc,
		logger:  logger,
		catalog: parsePage("catalog.html"),
		reviews: parsePage("reviews.html"),
	}
}

func (h *PageHandler) data(r *http.Request, title string) pageData {
	visitor := VisitorID(r.Context())
	return pageData{
		Title:     title,
		Cart:      h.service.CartView(visitor),
		Favorites: h.service.FavoritesView(visitor),
	}
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, tmpl *template.Template, data pageData) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.WithContext(r.Context(), h.logger).ErrorContext(r.Context(), "render page failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// redirectBack sends the browser to the same-host page it came from, or to
// fallback.
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := fallback
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && (ref.Host == "" || ref.Host == r.Host) {
		target = ref.RequestURI()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *PageHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.WithContext(r.Context(), h.logger).ErrorContext(r.Context(), "page request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	var appErr *apperrors.AppError
	msg := http.StatusText(status)
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		msg = appErr.Message
	}
	http.Error(w, msg, status)
}

func productIDParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "productId")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, apperrors.InvalidInput("invalid product id: " + raw)
	}
	return id, nil
}

// Catalog handles GET /?category=&q=
func (h *PageHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := h.data(r, "Каталог")
	data.Catalog = h.service.CatalogView(VisitorID(r.Context()), q.Get("category"), q.Get("q"))
	h.render(w, r, http.StatusOK, h.catalog, data)
}

// AddToCart handles POST /cart/items with form fields product_id and size.
func (h *PageHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, apperrors.InvalidInput("invalid form"))
		return
	}
	id, err := strconv.Atoi(r.PostForm.Get("product_id"))
	if err != nil {
		h.fail(w, r, apperrors.InvalidInput("invalid product id"))
		return
	}
	size := r.PostForm.Get("size")
	if size == "" {
		if p, ok := h.service.Catalog().Get(id); ok {
			size = p.DefaultSize()
		}
	}
	if err := h.service.AddToCart(VisitorID(r.Context()), id, size); err != nil {
		h.fail(w, r, err)
		return
	}
	redirectBack(w, r, "/")
}

// RemoveFromCart handles POST /cart/items/{productId}/{size}/remove
func (h *PageHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, err := productIDParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.service.RemoveFromCart(VisitorID(r.Context()), id, chi.URLParam(r, "size"))
	redirectBack(w, r, "/")
}

// ToggleFavorite handles POST /favorites/{productId}/toggle
func (h *PageHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := productIDParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.service.ToggleFavorite(VisitorID(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	redirectBack(w, r, "/")
}

// Reviews handles GET /products/{productId}/reviews. Opening the dialog
// re-fetches the product's reviews.
func (h *PageHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	id, err := productIDParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, ok := h.service.Catalog().Get(id); !ok {
		h.fail(w, r, apperrors.NotFound("product", strconv.Itoa(id)))
		return
	}

	h.service.LoadReviews(r.Context(), id)
	h.renderDialog(w, r, http.StatusOK, id, domain.NewReviewForm(), "")
}

// SubmitReview handles POST /products/{productId}/reviews. Success redirects
// to the freshly loaded dialog with an empty form; otherwise the dialog is
// shown again with what was entered.
func (h *PageHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, err := productIDParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, apperrors.InvalidInput("invalid form"))
		return
	}

	form := domain.ReviewForm{
		UserName: r.PostForm.Get("user_name"),
		Comment:  r.PostForm.Get("comment"),
	}
	form.Rating, _ = strconv.Atoi(r.PostForm.Get("rating"))

	submitted, err := h.service.SubmitReview(r.Context(), id, &form)
	var valErr *validator.ValidationError
	switch {
	case errors.As(err, &valErr):
		h.renderDialog(w, r, http.StatusBadRequest, id, form, msgReviewIncomplete)
	case err != nil:
		h.fail(w, r, err)
	case !submitted:
		h.renderDialog(w, r, http.StatusOK, id, form, "")
	default:
		http.Redirect(w, r, "/products/"+strconv.Itoa(id)+"/reviews", http.StatusSeeOther)
	}
}

func (h *PageHandler) renderDialog(w http.ResponseWriter, r *http.Request, status, productID int, form domain.ReviewForm, formErr string) {
	dialog, err := h.service.ReviewDialog(productID, form)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := h.data(r, dialog.Product.Name)
	data.Dialog = dialog
	data.FormError = formErr
	h.render(w, r, status, h.reviews, data)
}

package service

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/pr-poehali-dev/fashion-store-creation/pkg/errors"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/logger"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/validator"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/catalog"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/domain"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/state"
)

// ReviewAPI is the remote review endpoint.
type ReviewAPI interface {
	FetchReviews(ctx context.Context, productID int) (*domain.ReviewPage, error)
	SubmitReview(ctx context.Context, productID int, form domain.ReviewForm) error
}

// reviewFetchLimit caps concurrent requests to the review endpoint during a
// full load.
const reviewFetchLimit = 4

// Storefront owns each visitor's cart and favorites plus the shared review
// book, and keeps the review book in sync with the review endpoint.
type Storefront struct {
	catalog    *catalog.Catalog
	sessions   *state.Sessions
	reviews    *state.ReviewBook
	api        ReviewAPI
	logger     *slog.Logger
	fetchLimit int
}

// NewStorefront creates the controller.
func NewStorefront(cat *catalog.Catalog, sessions *state.Sessions, reviews *state.ReviewBook, api ReviewAPI, logger *slog.Logger) *Storefront {
	return &Storefront{
		catalog:    cat,
		sessions:   sessions,
		reviews:    reviews,
		api:        api,
		logger:     logger,
		fetchLimit: reviewFetchLimit,
	}
}

// Catalog exposes the product catalog.
func (s *Storefront) Catalog() *catalog.Catalog {
	return s.catalog
}

// LoadAllReviews fetches reviews for every product, at most fetchLimit at a
// time. Failed fetches are logged and leave that product's entry as it was.
func (s *Storefront) LoadAllReviews(ctx context.Context) {
	var g errgroup.Group
	g.SetLimit(s.fetchLimit)
	for _, p := range s.catalog.All() {
		id := p.ID
		g.Go(func() error {
			// One product failing must not stop the others, so no error reaches the group.
			s.LoadReviews(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
}

// LoadReviews fetches one product's reviews and replaces its entry in the
// review book. It reports whether the entry was updated; on failure the
// previous entry stays in place.
func (s *Storefront) LoadReviews(ctx context.Context, productID int) bool {
	page, err := s.api.FetchReviews(ctx, productID)
	if err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "review fetch failed, keeping previous data",
			slog.Int("product_id", productID),
			slog.String("error", err.Error()),
		)
		return false
	}
	s.reviews.Replace(productID, *page)
	return true
}

// SubmitReview validates form and posts it. Invalid input is returned as a
// validation error without any network call. A rejected or failed post is
// logged and reported as (false, nil) with form left as entered. On success
// the product's reviews are reloaded, form is reset and true is returned.
func (s *Storefront) SubmitReview(ctx context.Context, productID int, form *domain.ReviewForm) (bool, error) {
	if _, ok := s.catalog.Get(productID); !ok {
		return false, apperrors.NotFound("product", strconv.Itoa(productID))
	}

	form.Normalize()
	if err := validator.Validate(form); err != nil {
		return false, err
	}

	if err := s.api.SubmitReview(ctx, productID, *form); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "review submission failed",
			slog.Int("product_id", productID),
			slog.String("error", err.Error()),
		)
		return false, nil
	}

	s.LoadReviews(ctx, productID)
	form.Reset()
	return true, nil
}

// AddToCart adds one unit of the product in size to the visitor's cart. The
// product must exist and size must be one of its sizes.
func (s *Storefront) AddToCart(visitorID string, productID int, size string) error {
	p, ok := s.catalog.Get(productID)
	if !ok {
		return apperrors.NotFound("product", strconv.Itoa(productID))
	}
	if !p.HasSize(size) {
		return apperrors.InvalidInput("size " + strconv.Quote(size) + " is not available for " + p.Name)
	}
	s.sessions.Store(visitorID).AddToCart(p, size)
	return nil
}

// RemoveFromCart removes the (product, size) line from the visitor's cart if
// present.
func (s *Storefront) RemoveFromCart(visitorID string, productID int, size string) bool {
	return s.sessions.Store(visitorID).RemoveFromCart(productID, size)
}

// ToggleFavorite flips the product's favorite flag for the visitor and
// returns the new value.
func (s *Storefront) ToggleFavorite(visitorID string, productID int) (bool, error) {
	if _, ok := s.catalog.Get(productID); !ok {
		return false, apperrors.NotFound("product", strconv.Itoa(productID))
	}
	return s.sessions.Store(visitorID).ToggleFavorite(productID), nil
}

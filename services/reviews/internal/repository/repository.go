package repository

import (
	"context"

	"github.com/pr-poehali-dev/fashion-store-creation/services/reviews/internal/domain"
)

// ReviewRepository persists reviews.
type ReviewRepository interface {
	// Create inserts review and fills in its ID.
	Create(ctx context.Context, review *domain.Review) error
	// ListByProduct returns all reviews for a product, newest first.
	ListByProduct(ctx context.Context, productID int) ([]domain.Review, error)
}

// ReviewCache caches per-product review lists. A miss is reported as
// (nil, nil).
type ReviewCache interface {
	Get(ctx context.Context, productID int) (*domain.ReviewList, error)
	// Version returns the product's generation. Read it before loading the
	// list that is later passed to Set.
	Version(ctx context.Context, productID int) (int64, error)
	// Set stores list unless the product was invalidated after version was
	// read, and reports whether it stored.
	Set(ctx context.Context, list *domain.ReviewList, version int64) (bool, error)
	// Invalidate advances the generation and drops the cached list.
	Invalidate(ctx context.Context, productID int) error
}

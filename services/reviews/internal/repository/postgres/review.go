package postgres

import (
	"context"
	"fmt"

	"github.com/pr-poehali-dev/fashion-store-creation/pkg/database"
	"github.com/pr-poehali-dev/fashion-store-creation/services/reviews/internal/domain"
)

// ReviewRepository stores reviews in PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

const insertReview = `
	INSERT INTO reviews (product_id, user_name, rating, comment, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id`

// Create inserts review and sets review.ID from the generated key.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateReview", insertReview)
	defer func() { end(err) }()

	err = r.pool.QueryRow(ctx, insertReview,
		review.ProductID,
		review.UserName,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	).Scan(&review.ID)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

const listReviews = `
	SELECT id, product_id, user_name, rating, comment, created_at
	FROM reviews
	WHERE product_id = $1
	ORDER BY created_at DESC, id DESC`

// ListByProduct returns every review of a product, newest first. The result
// is never nil.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID int) (_ []domain.Review, err error) {
	ctx, end := database.TraceQuery(ctx, "ListReviews", listReviews)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, listReviews, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.UserName,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/pr-poehali-dev/fashion-store-creation/pkg/errors"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/validator"
	"github.com/pr-poehali-dev/fashion-store-creation/services/reviews/internal/domain"
	"github.com/pr-poehali-dev/fashion-store-creation/services/reviews/internal/repository"
)

// Messages returned to clients for rejected submissions.
const (
	MsgFieldsRequired = "All fields are required"
	MsgRatingRange    = "Rating must be between 1 and 5"
)

// EventPublisher emits review domain events.
type EventPublisher interface {
	PublishReviewCreated(ctx context.Context, review *domain.Review) error
}

// CreateReviewInput is a review submission as received from a client.
type CreateReviewInput struct {
	ProductID int    `json:"product_id" validate:"required,gte=1"`
	UserName  string `json:"user_name" validate:"notblank,max=100"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"notblank,max=2000"`
}

// ReviewService implements listing and submitting reviews.
type ReviewService struct {
	repo   repository.ReviewRepository
	cache  repository.ReviewCache
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewReviewService creates the service. cache may be nil.
func NewReviewService(repo repository.ReviewRepository, cache repository.ReviewCache, events EventPublisher, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:   repo,
		cache:  cache,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// ListReviews returns a product's reviews, newest first, with their summary.
// Cache failures degrade to a database read. The cache generation is read
// before the database so a fill racing a CreateReview is discarded.
func (s *ReviewService) ListReviews(ctx context.Context, productID int) (*domain.ReviewList, error) {
	if productID < 1 {
		return nil, apperrors.InvalidInput("product_id must be a positive integer")
	}

	fill := s.cache != nil
	var version int64
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, productID)
		if err != nil {
			s.logger.WarnContext(ctx, "review cache read failed",
				slog.Int("product_id", productID),
				slog.String("error", err.Error()),
			)
		} else if cached != nil {
			return cached, nil
		}

		version, err = s.cache.Version(ctx, productID)
		if err != nil {
			fill = false
			s.logger.WarnContext(ctx, "review cache generation read failed",
				slog.Int("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}

	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews for product %d: %w", productID, err)
	}

	list := &domain.ReviewList{
		ProductID: productID,
		Reviews:   reviews,
		Summary:   domain.Summarize(reviews),
	}

	if fill {
		stored, err := s.cache.Set(ctx, list, version)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "review cache write failed",
				slog.Int("product_id", productID),
				slog.String("error", err.Error()),
			)
		case !stored:
			s.logger.DebugContext(ctx, "review cache fill skipped, list changed during read",
				slog.Int("product_id", productID),
			)
		}
	}

	return list, nil
}

// CreateReview validates and stores a review, then drops the product's
// cached list and publishes review.created. Cache and event failures are
// logged; the review is stored regardless.
func (s *ReviewService) CreateReview(ctx context.Context, input *CreateReviewInput) (*domain.Review, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	review := domain.NewReview(input.ProductID, input.UserName, input.Rating, input.Comment, s.now())
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, review.ProductID); err != nil {
			s.logger.ErrorContext(ctx, "review cache invalidation failed",
				slog.Int("product_id", review.ProductID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.events.PublishReviewCreated(ctx, review); err != nil {
		s.logger.WarnContext(ctx, "failed to publish review.created",
			slog.Int64("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.Int64("review_id", review.ID),
		slog.Int("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// validateInput reports missing fields before range problems, so a blank
// form always reads "All fields are required".
func validateInput(input *CreateReviewInput) error {
	err := validator.Validate(input)
	if err == nil {
		return nil
	}
	valErr, ok := err.(*validator.ValidationError)
	if !ok {
		return apperrors.InvalidInput(err.Error())
	}
	if valErr.Missing() {
		return apperrors.InvalidInput(MsgFieldsRequired)
	}
	if _, bad := valErr.Fields()["rating"]; bad {
		return apperrors.InvalidInput(MsgRatingRange)
	}
	return apperrors.InvalidInput(valErr.Error())
}

package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	pkgkafka "github.com/pr-poehali-dev/fashion-store-creation/pkg/kafka"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/logger"
	"github.com/pr-poehali-dev/fashion-store-creation/services/reviews/internal/domain"
)

const (
	TopicReviewCreated = "reviews.review.created"

	AggregateTypeReview = "review"
	SourceReviewService = "reviews-service"
)

// ReviewCreatedData is the payload of a review.created event.
type ReviewCreatedData struct {
	ReviewID  int64     `json:"review_id"`
	ProductID int       `json:"product_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// Producer publishes review events.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// PublishReviewCreated emits review.created keyed by the review ID.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	evt, err := pkgkafka.NewEvent("review.created", strconv.FormatInt(review.ID, 10), AggregateTypeReview, SourceReviewService,
		ReviewCreatedData{
			ReviewID:  review.ID,
			ProductID: review.ProductID,
			Rating:    review.Rating,
			CreatedAt: review.CreatedAt,
		})
	if err != nil {
		return fmt.Errorf("build review.created event: %w", err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.publisher.Publish(ctx, TopicReviewCreated, evt); err != nil {
		return fmt.Errorf("publish review.created: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/fashion-store-creation/services/reviews/internal/domain"
	reviewredis "github.com/pr-poehali-dev/fashion-store-creation/services/reviews/internal/repository/redis"
)

// stallingRepo is an in-memory repository whose next ListByProduct call takes
// its snapshot, signals snapshotTaken, then blocks until release is closed.
type stallingRepo struct {
	mu            sync.Mutex
	reviews       []domain.Review
	snapshotTaken chan struct{}
	release       chan struct{}
}

func (r *stallingRepo) Create(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	review.ID = int64(len(r.reviews) + 1)
	r.reviews = append([]domain.Review{*review}, r.reviews...)
	return nil
}

func (r *stallingRepo) ListByProduct(_ context.Context, productID int) ([]domain.Review, error) {
	r.mu.Lock()
	out := []domain.Review{}
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	taken, release := r.snapshotTaken, r.release
	r.snapshotTaken, r.release = nil, nil
	r.mu.Unlock()

	if release != nil {
		close(taken)
		<-release
	}
	return out, nil
}

func TestListReviews_SlowReaderDoesNotCacheStaleList(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := &stallingRepo{snapshotTaken: make(chan struct{}), release: make(chan struct{})}
	events := new(mockEvents)
	events.On("PublishReviewCreated", mock.Anything, mock.Anything).Return(nil)
	svc := NewReviewService(repo, reviewredis.NewReviewCache(client, 5*time.Minute), events,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()
	type result struct {
		list *domain.ReviewList
		err  error
	}
	slow := make(chan result, 1)
	go func() {
		list, err := svc.ListReviews(ctx, 1)
		slow <- result{list, err}
	}()

	select {
	case <-repo.snapshotTaken:
	case <-time.After(5 * time.Second):
		t.Fatal("reader never reached the repository")
	}

	_, err := svc.CreateReview(ctx, &CreateReviewInput{ProductID: 1, UserName: "Анна", Rating: 5, Comment: "Села идеально"})
	require.NoError(t, err)

	close(repo.release)
	var stale result
	select {
	case stale = <-slow:
	case <-time.After(5 * time.Second):
		t.Fatal("reader did not finish")
	}
	require.NoError(t, stale.err)
	assert.Equal(t, 0, stale.list.Summary.TotalReviews)
	assert.False(t, mr.Exists("reviews:product:1"), "stale list must not be cached")

	fresh, err := svc.ListReviews(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{AverageRating: 5, TotalReviews: 1}, fresh.Summary)
	require.Len(t, fresh.Reviews, 1)
	assert.Equal(t, "Анна", fresh.Reviews[0].UserName)

	// The fresh read filled the cache at the current generation.
	assert.True(t, mr.Exists("reviews:product:1"))
	cached, err := svc.ListReviews(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Summary.TotalReviews)
}

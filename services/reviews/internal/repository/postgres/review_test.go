package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/fashion-store-creation/pkg/database"
	"github.com/pr-poehali-dev/fashion-store-creation/services/reviews/internal/domain"
)

var reviewColumns = []string{"id", "product_id", "user_name", "rating", "comment", "created_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestReviewRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	review := domain.NewReview(1, "Мария", 5, "Очень мягкий", now)

	mock.ExpectQuery("INSERT INTO reviews").
		WithArgs(1, "Мария", 5, "Очень мягкий", now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(17)))

	require.NoError(t, repo.Create(context.Background(), review))
	assert.Equal(t, int64(17), review.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_Error(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectQuery("INSERT INTO reviews").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("check constraint violated"))

	err := repo.Create(context.Background(), domain.NewReview(1, "a", 9, "b", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert review")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListByProduct(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	newer := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	older := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, product_id, user_name, rating, comment, created_at").
		WithArgs(2).
		WillReturnRows(pgxmock.NewRows(reviewColumns).
			AddRow(int64(5), 2, "Олег", 4, "Сидят отлично", newer).
			AddRow(int64(3), 2, "Ира", 5, "Тянутся", older))

	got, err := repo.ListByProduct(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].ID)
	assert.Equal(t, "Олег", got[0].UserName)
	assert.Equal(t, newer, got[0].CreatedAt)
	assert.Equal(t, "Тянутся", got[1].Comment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListByProduct_EmptyIsNotNil(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectQuery("SELECT id").WithArgs(4).WillReturnRows(pgxmock.NewRows(reviewColumns))

	got, err := repo.ListByProduct(context.Background(), 4)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReviewRepository_ListByProduct_QueryError(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectQuery("SELECT id").WithArgs(1).WillReturnError(errors.New("connection reset"))

	_, err := repo.ListByProduct(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list reviews")
}

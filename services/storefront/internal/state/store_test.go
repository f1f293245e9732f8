package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/domain"
)

var (
	sweater = domain.Product{ID: 1, Name: "Уютный свитер", Price: 1000, Sizes: []string{"S", "M"}}
	jeans   = domain.Product{ID: 2, Name: "Комфортные джинсы", Price: 500, Sizes: []string{"30", "32"}}
)

func TestAddToCart_SameKeyIncrements(t *testing.T) {
	for _, n := range []int{1, 2, 7} {
		s := NewStore()
		for i := 0; i < n; i++ {
			s.AddToCart(sweater, "M")
		}

		lines := s.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, n, lines[0].Quantity)
		assert.Equal(t, "M", lines[0].SelectedSize)
	}
}

func TestAddToCart_DistinctSizesAreDistinctLines(t *testing.T) {
	s := NewStore()
	s.AddToCart(sweater, "S")
	s.AddToCart(jeans, "30")
	s.AddToCart(sweater, "M")
	s.AddToCart(sweater, "S")

	lines := s.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, 1, lines[0].Product.ID)
	assert.Equal(t, "S", lines[0].SelectedSize)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 2, lines[1].Product.ID)
	assert.Equal(t, "M", lines[2].SelectedSize)
	assert.Equal(t, 4, s.ItemCount())
}

func TestRemoveFromCart(t *testing.T) {
	s := NewStore()
	s.AddToCart(sweater, "S")
	s.AddToCart(jeans, "30")

	assert.True(t, s.RemoveFromCart(1, "S"))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Product.ID)
}

func TestRemoveFromCart_AbsentKeyLeavesCartUnchanged(t *testing.T) {
	s := NewStore()
	s.AddToCart(sweater, "S")
	s.AddToCart(jeans, "30")
	s.AddToCart(sweater, "M")
	before := s.Lines()

	assert.False(t, s.RemoveFromCart(1, "XL"))
	assert.False(t, s.RemoveFromCart(99, "S"))

	assert.Equal(t, before, s.Lines())
}

func TestToggleFavorite_TwiceIsIdentity(t *testing.T) {
	s := NewStore()
	s.ToggleFavorite(3)

	for _, id := range []int{1, 3} {
		before := s.IsFavorite(id)
		s.ToggleFavorite(id)
		assert.NotEqual(t, before, s.IsFavorite(id))
		s.ToggleFavorite(id)
		assert.Equal(t, before, s.IsFavorite(id))
	}
}

func TestToggleFavorite_KeepsInsertionOrder(t *testing.T) {
	s := NewStore()
	assert.True(t, s.ToggleFavorite(4))
	assert.True(t, s.ToggleFavorite(1))
	assert.True(t, s.ToggleFavorite(2))
	assert.False(t, s.ToggleFavorite(1))

	assert.Equal(t, []int{4, 2}, s.Favorites())
}

func TestTotalPrice(t *testing.T) {
	s := NewStore()
	assert.Equal(t, int64(0), s.TotalPrice())

	s.AddToCart(sweater, "S")
	s.AddToCart(sweater, "S")
	s.AddToCart(jeans, "32")

	assert.Equal(t, int64(2500), s.TotalPrice())
}

func TestLines_ReturnsCopy(t *testing.T) {
	s := NewStore()
	s.AddToCart(sweater, "S")

	lines := s.Lines()
	lines[0].Quantity = 100

	assert.Equal(t, 1, s.Lines()[0].Quantity)
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddToCart(sweater, "M")
		}()
	}
	wg.Wait()

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 50, lines[0].Quantity)
}

func TestReviewBook(t *testing.T) {
	b := NewReviewBook()

	_, ok := b.Get(1)
	assert.False(t, ok)

	first := domain.ReviewPage{
		Reviews:   []domain.Review{{ID: 1, Rating: 4}},
		Aggregate: domain.ReviewAggregate{AverageRating: 4, TotalReviews: 1},
	}
	b.Replace(1, first)

	got, ok := b.Get(1)
	require.True(t, ok)
	assert.Equal(t, first, got)

	// A later page replaces the earlier one wholesale.
	second := domain.ReviewPage{Reviews: []domain.Review{}, Aggregate: domain.ReviewAggregate{}}
	b.Replace(1, second)
	got, _ = b.Get(1)
	assert.Empty(t, got.Reviews)
	assert.Equal(t, 0, got.Aggregate.TotalReviews)
}

func TestReviewBook_IsolatedFromCallers(t *testing.T) {
	b := NewReviewBook()
	reviews := []domain.Review{{ID: 1, Comment: "ok"}}
	b.Replace(1, domain.ReviewPage{Reviews: reviews})
	reviews[0].Comment = "changed"

	got, _ := b.Get(1)
	assert.Equal(t, "ok", got.Reviews[0].Comment)
}

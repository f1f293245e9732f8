package state

import (
	"sync"

	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/domain"
)

// ReviewBook keeps the last fetched review page per product. Pages are
// replaced whole; the most recent Replace wins.
type ReviewBook struct {
	mu    sync.RWMutex
	pages map[int]domain.ReviewPage
}

func NewReviewBook() *ReviewBook {
	return &ReviewBook{pages: make(map[int]domain.ReviewPage)}
}

// Replace stores page as the product's current reviews.
func (b *ReviewBook) Replace(productID int, page domain.ReviewPage) {
	reviews := make([]domain.Review, len(page.Reviews))
	copy(reviews, page.Reviews)
	page.Reviews = reviews

	b.mu.Lock()
	b.pages[productID] = page
	b.mu.Unlock()
}

// Get returns the product's page and whether one has been loaded.
func (b *ReviewBook) Get(productID int) (domain.ReviewPage, bool) {
	b.mu.RLock()
	page, ok := b.pages[productID]
	b.mu.RUnlock()
	if !ok {
		return domain.ReviewPage{}, false
	}

	reviews := make([]domain.Review, len(page.Reviews))
	copy(reviews, page.Reviews)
	page.Reviews = reviews
	return page, true
}

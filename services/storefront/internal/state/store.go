package state

import (
	"sync"

	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/domain"
)

// Store holds the cart and favorites. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	cart      []domain.CartLine
	favorites []int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// AddToCart adds one unit of product in size. An existing (product, size)
// line is incremented; otherwise a line is appended.
func (s *Store) AddToCart(product domain.Product, size string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].Product.ID == product.ID && s.cart[i].SelectedSize == size {
			s.cart[i].Quantity++
			return
		}
	}
	s.cart = append(s.cart, domain.CartLine{Product: product, Quantity: 1, SelectedSize: size})
}

// RemoveFromCart drops the (id, size) line. Missing lines are ignored.
// It reports whether a line was removed.
func (s *Store) RemoveFromCart(id int, size string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].Product.ID == id && s.cart[i].SelectedSize == size {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return true
		}
	}
	return false
}

// ToggleFavorite flips membership of id and returns the new membership.
func (s *Store) ToggleFavorite(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, fav := range s.favorites {
		if fav == id {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			return false
		}
	}
	s.favorites = append(s.favorites, id)
	return true
}

// TotalPrice is the sum of price times quantity over the cart.
func (s *Store) TotalPrice() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for i := range s.cart {
		total += s.cart[i].Subtotal()
	}
	return total
}

// ItemCount is the number of units in the cart.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for i := range s.cart {
		n += s.cart[i].Quantity
	}
	return n
}

// Lines returns a copy of the cart in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartLine, len(s.cart))
	copy(out, s.cart)
	return out
}

// Favorites returns favorite product IDs in the order they were added.
func (s *Store) Favorites() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// IsFavorite reports whether id is a favorite.
func (s *Store) IsFavorite(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, fav := range s.favorites {
		if fav == id {
			return true
		}
	}
	return false
}

package service

import (
	"strconv"

	apperrors "github.com/pr-poehali-dev/fashion-store-creation/pkg/errors"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/domain"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/state"
)

// RatingView is the star summary shown on a card or dialog.
type RatingView struct {
	Average     float64 `json:"average_rating"`
	AverageText string  `json:"average_text"`
	Total       int     `json:"total_reviews"`
	Stars       int     `json:"stars"`
	Live        bool    `json:"live"`
}

// ProductCard is one product tile in the catalog. Rating is nil when there
// is nothing to show.
type ProductCard struct {
	Product      domain.Product `json:"product"`
	PriceText    string         `json:"price_text"`
	SelectedSize string         `json:"selected_size"`
	IsFavorite   bool           `json:"is_favorite"`
	Rating       *RatingView    `json:"rating,omitempty"`
	ReviewCount  int            `json:"review_count"`
}

// CatalogView is the catalog page.
type CatalogView struct {
	Category   string        `json:"category"`
	Search     string        `json:"search"`
	Categories []string      `json:"categories"`
	Products   []ProductCard `json:"products"`
}

// CartLineView is one cart drawer row.
type CartLineView struct {
	domain.CartLine
	PriceText    string `json:"price_text"`
	SubtotalText string `json:"subtotal_text"`
}

// CartView is the cart drawer.
type CartView struct {
	Lines     []CartLineView `json:"lines"`
	ItemCount int            `json:"item_count"`
	Total     int64          `json:"total"`
	TotalText string         `json:"total_text"`
}

// FavoriteView is one favorites drawer row.
type FavoriteView struct {
	Product   domain.Product `json:"product"`
	PriceText string         `json:"price_text"`
}

// FavoritesView is the favorites drawer, in the order items were added.
type FavoritesView struct {
	Items []FavoriteView `json:"items"`
}

// ReviewDialog is the review list and form for one product.
type ReviewDialog struct {
	Product domain.Product    `json:"product"`
	Loaded  bool              `json:"loaded"`
	Reviews []domain.Review   `json:"reviews"`
	Rating  RatingView        `json:"rating"`
	Form    domain.ReviewForm `json:"form"`
}

func (s *Storefront) rating(p *domain.Product) (*RatingView, int) {
	if page, ok := s.reviews.Get(p.ID); ok {
		agg := page.Aggregate
		if agg.TotalReviews == 0 {
			return nil, 0
		}
		return &RatingView{
			Average:     agg.AverageRating,
			AverageText: domain.FormatRating(agg.AverageRating),
			Total:       agg.TotalReviews,
			Stars:       agg.Stars(),
			Live:        true,
		}, agg.TotalReviews
	}

	if p.Rating == nil || p.ReviewCount == nil {
		return nil, 0
	}
	agg := domain.ReviewAggregate{AverageRating: *p.Rating, TotalReviews: *p.ReviewCount}
	return &RatingView{
		Average:     agg.AverageRating,
		AverageText: domain.FormatRating(agg.AverageRating),
		Total:       agg.TotalReviews,
		Stars:       agg.Stars(),
	}, agg.TotalReviews
}

func (s *Storefront) card(store *state.Store, p domain.Product) ProductCard {
	rating, count := s.rating(&p)
	return ProductCard{
		Product:      p,
		PriceText:    domain.FormatPrice(p.Price),
		SelectedSize: p.DefaultSize(),
		IsFavorite:   store.IsFavorite(p.ID),
		Rating:       rating,
		ReviewCount:  count,
	}
}

// CatalogView filters the catalog and decorates each product for display,
// marking the visitor's favorites.
func (s *Storefront) CatalogView(visitorID, category, search string) CatalogView {
	if category == "" {
		category = domain.CategoryAll
	}
	store := s.sessions.Store(visitorID)
	products := s.catalog.Filter(category, search)
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, s.card(store, p))
	}
	return CatalogView{
		Category:   category,
		Search:     search,
		Categories: s.catalog.Categories(),
		Products:   cards,
	}
}

// CartView renders the visitor's cart.
func (s *Storefront) CartView(visitorID string) CartView {
	lines := s.sessions.Store(visitorID).Lines()
	view := CartView{Lines: make([]CartLineView, 0, len(lines))}
	for _, l := range lines {
		view.Lines = append(view.Lines, CartLineView{
			CartLine:     l,
			PriceText:    domain.FormatPrice(l.Product.Price),
			SubtotalText: domain.FormatPrice(l.Subtotal()),
		})
		view.ItemCount += l.Quantity
		view.Total += l.Subtotal()
	}
	view.TotalText = domain.FormatPrice(view.Total)
	return view
}

// FavoritesView renders the visitor's favorites.
func (s *Storefront) FavoritesView(visitorID string) FavoritesView {
	ids := s.sessions.Store(visitorID).Favorites()
	view := FavoritesView{Items: make([]FavoriteView, 0, len(ids))}
	for _, id := range ids {
		p, ok := s.catalog.Get(id)
		if !ok {
			continue
		}
		view.Items = append(view.Items, FavoriteView{Product: p, PriceText: domain.FormatPrice(p.Price)})
	}
	return view
}

// ReviewDialog renders the product's reviews with form prefilled.
func (s *Storefront) ReviewDialog(productID int, form domain.ReviewForm) (ReviewDialog, error) {
	p, ok := s.catalog.Get(productID)
	if !ok {
		return ReviewDialog{}, apperrors.NotFound("product", strconv.Itoa(productID))
	}

	dialog := ReviewDialog{Product: p, Reviews: []domain.Review{}, Form: form}
	if page, ok := s.reviews.Get(productID); ok {
		dialog.Loaded = true
		dialog.Reviews = page.Reviews
		dialog.Rating = RatingView{
			Average:     page.Aggregate.AverageRating,
			AverageText: domain.FormatRating(page.Aggregate.AverageRating),
			Total:       page.Aggregate.TotalReviews,
			Stars:       page.Aggregate.Stars(),
			Live:        true,
		}
	}
	return dialog, nil
}

package domain

// CategoryAll is the catalog filter value that matches every category.
const CategoryAll = "Все"

// Product categories.
const (
	CategorySweaters = "Свитеры"
	CategoryJeans    = "Джинсы"
	CategoryShirts   = "Рубашки"
	CategoryHoodies  = "Кофты"
)

// Categories lists the product categories in display order.
var Categories = []string{CategorySweaters, CategoryJeans, CategoryShirts, CategoryHoodies}

// Product is a catalog item. Price is in whole rubles.
type Product struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes"`
	Description string   `json:"description"`

	// Rating and ReviewCount are shown until live review data arrives.
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty"`
}

// HasSize reports whether size is one of the product's sizes.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// DefaultSize is the size preselected on the product card.
func (p *Product) DefaultSize() string {
	if len(p.Sizes) == 0 {
		return ""
	}
	return p.Sizes[0]
}

// CartLine is a product in the cart in one size. Quantity is at least 1.
type CartLine struct {
	Product      Product `json:"product"`
	Quantity     int     `json:"quantity"`
	SelectedSize string  `json:"selected_size"`
}

// Subtotal is price times quantity.
func (l *CartLine) Subtotal() int64 {
	return l.Product.Price * int64(l.Quantity)
}

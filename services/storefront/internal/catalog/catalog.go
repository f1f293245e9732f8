package catalog

import (
	"strings"

	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/domain"
)

// Catalog is the fixed, read-only product list.
type Catalog struct {
	products []domain.Product
	byID     map[int]int
}

// New builds a catalog over products, keeping their order. Products with a
// duplicate ID after the first are ignored.
func New(products []domain.Product) *Catalog {
	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	for _, p := range products {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// All returns every product in catalog order.
func (c *Catalog) All() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Get looks a product up by ID.
func (c *Catalog) Get(id int) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// Len is the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Categories returns the filter choices, CategoryAll first.
func (c *Catalog) Categories() []string {
	return append([]string{domain.CategoryAll}, domain.Categories...)
}

// Filter returns, in catalog order, the products in category whose name
// contains search, ignoring case. CategoryAll or an empty category matches
// every product; an empty search matches every name.
func (c *Catalog) Filter(category, search string) []domain.Product {
	needle := strings.ToLower(search)
	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if category != "" && category != domain.CategoryAll && p.Category != category {
			continue
		}
		if !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/domain"
)

func ids(products []domain.Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestFilter_AllAndEmptySearchReturnsEverythingInOrder(t *testing.T) {
	c := Default()

	assert.Equal(t, c.All(), c.Filter(domain.CategoryAll, ""))
	assert.Equal(t, []int{1, 2, 3, 4}, ids(c.Filter(domain.CategoryAll, "")))
}

func TestFilter_EmptyCategoryActsAsAll(t *testing.T) {
	c := Default()
	assert.Equal(t, []int{1, 2, 3, 4}, ids(c.Filter("", "")))
}

func TestFilter_SearchIsCaseInsensitive(t *testing.T) {
	c := Default()

	for _, q := range []string{"Свитер", "свитер", "СВИТЕР", "свИТер"} {
		got := c.Filter(domain.CategoryAll, q)
		assert.Equal(t, []int{1}, ids(got), q)
	}
}

func TestFilter_Category(t *testing.T) {
	c := Default()

	assert.Equal(t, []int{2}, ids(c.Filter(domain.CategoryJeans, "")))
	assert.Equal(t, []int{4}, ids(c.Filter(domain.CategoryHoodies, "кофта")))
	assert.Empty(t, c.Filter(domain.CategoryJeans, "свитер"))
	assert.Empty(t, c.Filter("Обувь", ""))
}

func TestFilter_SubstringAcrossProducts(t *testing.T) {
	c := Default()
	// "мяг" appears only in "Мягкая рубашка"; "ая" in two names.
	assert.Equal(t, []int{3}, ids(c.Filter(domain.CategoryAll, "мяг")))
	assert.Equal(t, []int{3, 4}, ids(c.Filter(domain.CategoryAll, "ая ")))
}

func TestGet(t *testing.T) {
	c := Default()

	p, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, "Комфортные джинсы", p.Name)
	assert.Equal(t, []string{"28", "30", "32", "34"}, p.Sizes)

	_, ok = c.Get(99)
	assert.False(t, ok)
}

func TestAll_ReturnsCopy(t *testing.T) {
	c := Default()
	all := c.All()
	all[0].Name = "changed"

	p, _ := c.Get(1)
	assert.Equal(t, "Уютный свитер", p.Name)
}

func TestNew_SkipsDuplicateIDs(t *testing.T) {
	c := New([]domain.Product{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}, {ID: 2, Name: "c"}})

	assert.Equal(t, 2, c.Len())
	p, _ := c.Get(1)
	assert.Equal(t, "a", p.Name)
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Все", "Свитеры", "Джинсы", "Рубашки", "Кофты"}, Default().Categories())
}

func TestDefault_Invariants(t *testing.T) {
	for _, p := range Default().All() {
		assert.NotEmpty(t, p.Sizes, p.Name)
		assert.Contains(t, domain.Categories, p.Category, p.Name)
		assert.Positive(t, p.Price, p.Name)
	}
}

package catalog

import "github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/domain"

func ptr[T any](v T) *T { return &v }

// Default returns the storefront's product range.
func Default() *Catalog {
	return New([]domain.Product{
		{
			ID:          1,
			Name:        "Уютный свитер",
			Price:       3990,
			Image:       "/img/61f80bd2-7791-48b5-9e5c-fc2ff54f9ccf.jpg",
			Category:    domain.CategorySweaters,
			Sizes:       []string{"S", "M", "L", "XL"},
			Description: "Мягкий и теплый свитер из натурального хлопка",
			Rating:      ptr(4.5),
			ReviewCount: ptr(12),
		},
		{
			ID:          2,
			Name:        "Комфортные джинсы",
			Price:       4590,
			Image:       "/img/dd858c77-fcc3-4335-b012-1760f75889f5.jpg",
			Category:    domain.CategoryJeans,
			Sizes:       []string{"28", "30", "32", "34"},
			Description: "Удобные джинсы с эластаном для максимального комфорта",
			Rating:      ptr(4.7),
			ReviewCount: ptr(8),
		},
		{
			ID:          3,
			Name:        "Мягкая рубашка",
			Price:       2890,
			Image:       "/img/61f80bd2-7791-48b5-9e5c-fc2ff54f9ccf.jpg",
			Category:    domain.CategoryShirts,
			Sizes:       []string{"S", "M", "L"},
			Description: "Легкая рубашка из органического хлопка",
			Rating:      ptr(4.8),
			ReviewCount: ptr(5),
		},
		{
			ID:          4,
			Name:        "Теплая кофта",
			Price:       3290,
			Image:       "/img/dd858c77-fcc3-4335-b012-1760f75889f5.jpg",
			Category:    domain.CategoryHoodies,
			Sizes:       []string{"S", "M", "L", "XL"},
			Description: "Стильная кофта для повседневной носки",
			Rating:      ptr(4.3),
			ReviewCount: ptr(7),
		},
	})
}

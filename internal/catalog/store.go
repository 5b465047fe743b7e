package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is one catalog entry, in the shape storefront clients consume.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Product, error)
	ListByCategory(ctx context.Context, category string) ([]Product, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id int) (Product, bool, error)
}

func seed() []Product {
	return []Product{
		{
			ID:          1,
			Title:       "Fjallraven Foldsack No. 1 Backpack",
			Price:       decimal.RequireFromString("109.95"),
			Description: "Fits 15 inch laptops, padded sleeve for everyday carry.",
			Category:    "men's clothing",
			Image:       "https://fakestoreapi.com/img/81fPKd-2AYL._AC_SL1500_.jpg",
		},
		{
			ID:          2,
			Title:       "Mens Casual Premium Slim Fit T-Shirts",
			Price:       decimal.RequireFromString("22.3"),
			Description: "Slim-fitting style, contrast raglan long sleeve.",
			Category:    "men's clothing",
			Image:       "https://fakestoreapi.com/img/71-3HjGNDUL._AC_SY879._SX._UX._SY._UY_.jpg",
		},
		{
			ID:          5,
			Title:       "John Hardy Women's Legends Naga Bracelet",
			Price:       decimal.RequireFromString("695"),
			Description: "Gold and silver dragon station chain bracelet.",
			Category:    "jewelery",
			Image:       "https://fakestoreapi.com/img/71pWzhdJNwL._AC_UL640_QL65_ML3_.jpg",
		},
		{
			ID:          9,
			Title:       "WD 2TB Elements Portable External Hard Drive",
			Price:       decimal.RequireFromString("64"),
			Description: "USB 3.0 and USB 2.0 compatibility, fast data transfers.",
			Category:    "electronics",
			Image:       "https://fakestoreapi.com/img/61IBBVJvSDL._AC_SY879_.jpg",
		},
		{
			ID:          18,
			Title:       "MBJ Women's Solid Short Sleeve Boat Neck V",
			Price:       decimal.RequireFromString("9.85"),
			Description: "95% rayon, 5% spandex, lightweight fabric.",
			Category:    "women's clothing",
			Image:       "https://fakestoreapi.com/img/71z3kpMAYsL._AC_UY879_.jpg",
		},
	}
}

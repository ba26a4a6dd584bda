package domain

import "github.com/shopspring/decimal"

// Product is read-only metadata from the external catalog. Prices here are
// live catalog prices; the cart keeps its own snapshot at add-time.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

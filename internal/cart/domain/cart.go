package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one product line in a cart. Price is the unit price snapshot
// captured when the line was first added; increments never touch it.
type CartItem struct {
	ProductID int64           `json:"productId"`
	Quantity  int32           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	AddedAt   time.Time       `json:"addedAt"`
}

// Cart holds at most one line per product. There is at most one cart per
// user; it comes into existence on the first add.
type Cart struct {
	ID        string     `json:"id"`
	UserID    int64      `json:"userId"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const StatusCreated = "created"

// Order is written once at checkout and never mutated. Its lines carry the
// prices the user saw, independent of any later catalog change.
type Order struct {
	ID          string          `json:"id"`
	UserID      int64           `json:"userId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
	Items       []OrderItem     `json:"items"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   string          `json:"orderId"`
	ProductID int64           `json:"productId"`
	Quantity  int32           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Snapshot is the client-supplied view of the cart at checkout time.
type Snapshot struct {
	Items       []SnapshotLine
	TotalAmount decimal.Decimal
}

type SnapshotLine struct {
	ProductID int64
	Quantity  int32
	Price     decimal.Decimal
}

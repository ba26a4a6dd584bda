package app

import (
	"context"

	"github.com/mrobles-dev/tienda/internal/order/domain"
)

type OrderRepo interface {
	// CreateOrderTx persists the order and all its lines in one transaction.
	CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error)
	// ListByUser returns orders newest first, lines included.
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
}

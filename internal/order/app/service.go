package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrobles-dev/tienda/internal/order/domain"
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo OrderRepo
}

func NewService(repo OrderRepo) *Service {
	return &Service{repo: repo}
}

// PlaceOrder converts a client-supplied cart snapshot into an immutable order.
// The snapshot is trusted as-is: the order records what the user saw at
// checkout, not a live re-read of the cart, so a concurrent cart mutation
// cannot corrupt it.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, snap domain.Snapshot) (domain.Order, error) {
	if len(snap.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: empty item list", ErrInvalidInput)
	}
	if snap.TotalAmount.IsNegative() {
		return domain.Order{}, fmt.Errorf("%w: negative total", ErrInvalidInput)
	}

	items := make([]domain.OrderItem, 0, len(snap.Items))
	for i, line := range snap.Items {
		if line.ProductID <= 0 {
			return domain.Order{}, fmt.Errorf("%w: item %d: invalid product id", ErrInvalidInput, i)
		}
		if line.Quantity < 1 {
			return domain.Order{}, fmt.Errorf("%w: item %d: quantity must be at least 1", ErrInvalidInput, i)
		}
		if line.Price.IsNegative() {
			return domain.Order{}, fmt.Errorf("%w: item %d: negative price", ErrInvalidInput, i)
		}
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}

	order := domain.Order{
		UserID:      userID,
		TotalAmount: snap.TotalAmount,
		Status:      domain.StatusCreated,
		Items:       items,
	}

	created, err := s.repo.CreateOrderTx(ctx, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("persist order: %w", err)
	}
	return created, nil
}

func (s *Service) ListOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

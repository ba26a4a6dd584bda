package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mrobles-dev/tienda/internal/cart/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrCartNotFound = errors.New("cart not found")
	ErrLineNotFound = errors.New("cart line not found")
)

// Service is the sole writer of persisted cart state. Every mutation is a
// single conditional statement scoped by (cart_id, product_id), so two tabs
// of the same user can race freely without losing increments.
type Service struct {
	repo CartRepo
}

func NewService(repo CartRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	return s.repo.ListItems(ctx, userID)
}

// AddItem creates the user's cart if absent, then inserts the line or
// increments its quantity. The stored price snapshot is kept on increment.
// The returned bool reports whether a new line was created.
func (s *Service) AddItem(ctx context.Context, userID int64, productID int64, quantity int32, price decimal.Decimal) (domain.CartItem, bool, error) {
	if productID <= 0 || quantity <= 0 || price.IsNegative() {
		return domain.CartItem{}, false, ErrInvalidInput
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.CartItem{}, false, fmt.Errorf("get or create cart: %w", err)
	}

	item, created, err := s.repo.UpsertItemIncrement(ctx, cart.ID, domain.CartItem{
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
	})
	if err != nil {
		return domain.CartItem{}, false, fmt.Errorf("upsert cart line: %w", err)
	}
	return item, created, nil
}

// SetQuantity overwrites a line's quantity. Quantity must stay >= 1; a line
// is only ever removed through RemoveItem.
func (s *Service) SetQuantity(ctx context.Context, userID int64, productID int64, quantity int32) (domain.CartItem, error) {
	if quantity < 1 {
		return domain.CartItem{}, ErrInvalidInput
	}

	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return domain.CartItem{}, err
	}

	return s.repo.SetItemQuantity(ctx, cart.ID, productID, quantity)
}

// AdjustQuantity applies a signed delta as one atomic statement, clamping the
// result at 1. This is the primitive the sync client's +/- buttons use;
// unlike a client-computed absolute set, concurrent adjustments all land.
func (s *Service) AdjustQuantity(ctx context.Context, userID int64, productID int64, delta int32) (domain.CartItem, error) {
	if delta == 0 {
		return domain.CartItem{}, ErrInvalidInput
	}

	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return domain.CartItem{}, err
	}

	return s.repo.AdjustItemQuantity(ctx, cart.ID, productID, delta)
}

// RemoveItem deletes the line if present. A missing line is not an error, so
// the operation is idempotent; a missing cart still is one.
func (s *Service) RemoveItem(ctx context.Context, userID int64, productID int64) error {
	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.RemoveItem(ctx, cart.ID, productID)
}

// Clear empties the cart after a successful checkout. No cart, nothing to do.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return nil
		}
		return err
	}
	return s.repo.Clear(ctx, cart.ID)
}

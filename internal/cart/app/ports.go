package app

import (
	"context"

	"github.com/mrobles-dev/tienda/internal/cart/domain"
)

type CartRepo interface {
	// GetByUser returns ErrCartNotFound when the user has no cart row.
	GetByUser(ctx context.Context, userID int64) (domain.Cart, error)
	GetOrCreate(ctx context.Context, userID int64) (domain.Cart, error)
	// ListItems returns an empty slice, not an error, when no cart exists.
	ListItems(ctx context.Context, userID int64) ([]domain.CartItem, error)
	// UpsertItemIncrement atomically inserts the line or adds item.Quantity to
	// the existing one, keeping the stored price snapshot. Reports whether a
	// new line was inserted.
	UpsertItemIncrement(ctx context.Context, cartID string, item domain.CartItem) (domain.CartItem, bool, error)
	// SetItemQuantity overwrites the quantity of an existing line; returns
	// ErrLineNotFound when the line is absent.
	SetItemQuantity(ctx context.Context, cartID string, productID int64, quantity int32) (domain.CartItem, error)
	// AdjustItemQuantity applies a signed delta server-side, clamping at 1.
	AdjustItemQuantity(ctx context.Context, cartID string, productID int64, delta int32) (domain.CartItem, error)
	RemoveItem(ctx context.Context, cartID string, productID int64) error
	Clear(ctx context.Context, cartID string) error
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mrobles-dev/tienda/internal/cart/app"
	"github.com/mrobles-dev/tienda/internal/cart/domain"
)

type CartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) *CartRepo {
	return &CartRepo{db: db}
}

func (r *CartRepo) GetByUser(ctx context.Context, userID int64) (domain.Cart, error) {
	var cart domain.Cart
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, app.ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("query cart: %w", err)
	}

	cart.Items, err = r.listItemsByCart(ctx, cart.ID)
	if err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

func (r *CartRepo) GetOrCreate(ctx context.Context, userID int64) (domain.Cart, error) {
	cart, err := r.GetByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, app.ErrCartNotFound) {
		return domain.Cart{}, err
	}

	_, createErr := r.db.ExecContext(ctx, `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	if createErr != nil && !isUniqueViolation(createErr) {
		return domain.Cart{}, fmt.Errorf("create cart: %w", createErr)
	}

	// Either we created it or a concurrent request did; re-read wins both ways.
	return r.GetByUser(ctx, userID)
}

func (r *CartRepo) ListItems(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ci.product_id, ci.quantity, ci.price, ci.added_at
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE c.user_id = $1
		ORDER BY ci.added_at, ci.product_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.Price, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *CartRepo) UpsertItemIncrement(ctx context.Context, cartID string, item domain.CartItem) (domain.CartItem, bool, error) {
	var out domain.CartItem
	var inserted bool
	// xmax = 0 distinguishes a fresh insert from a conflict update. Price is
	// deliberately left out of the DO UPDATE set.
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING product_id, quantity, price, added_at, (xmax = 0)`,
		cartID, item.ProductID, item.Quantity, item.Price,
	).Scan(&out.ProductID, &out.Quantity, &out.Price, &out.AddedAt, &inserted)
	if err != nil {
		return domain.CartItem{}, false, fmt.Errorf("upsert cart item: %w", err)
	}
	return out, inserted, nil
}

func (r *CartRepo) SetItemQuantity(ctx context.Context, cartID string, productID int64, quantity int32) (domain.CartItem, error) {
	var out domain.CartItem
	err := r.db.QueryRowContext(ctx, `
		UPDATE cart_items SET quantity = $3
		WHERE cart_id = $1 AND product_id = $2
		RETURNING product_id, quantity, price, added_at`,
		cartID, productID, quantity,
	).Scan(&out.ProductID, &out.Quantity, &out.Price, &out.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CartItem{}, app.ErrLineNotFound
	}
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("set cart item quantity: %w", err)
	}
	return out, nil
}

func (r *CartRepo) AdjustItemQuantity(ctx context.Context, cartID string, productID int64, delta int32) (domain.CartItem, error) {
	var out domain.CartItem
	err := r.db.QueryRowContext(ctx, `
		UPDATE cart_items SET quantity = GREATEST(quantity + $3, 1)
		WHERE cart_id = $1 AND product_id = $2
		RETURNING product_id, quantity, price, added_at`,
		cartID, productID, delta,
	).Scan(&out.ProductID, &out.Quantity, &out.Price, &out.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CartItem{}, app.ErrLineNotFound
	}
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("adjust cart item quantity: %w", err)
	}
	return out, nil
}

func (r *CartRepo) RemoveItem(ctx context.Context, cartID string, productID int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *CartRepo) listItemsByCart(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, price, added_at
		FROM cart_items WHERE cart_id = $1
		ORDER BY added_at, product_id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.Price, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

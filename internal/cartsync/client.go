package cartsync

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	cartdomain "github.com/mrobles-dev/tienda/internal/cart/domain"
	catalogdomain "github.com/mrobles-dev/tienda/internal/catalog/domain"
	orderdomain "github.com/mrobles-dev/tienda/internal/order/domain"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var ErrEmptyCart = errors.New("cart is empty")

// API is the server surface the sync client consumes.
type API interface {
	List(ctx context.Context) ([]cartdomain.CartItem, error)
	Add(ctx context.Context, productID int64, quantity int32, price decimal.Decimal) (cartdomain.CartItem, error)
	Adjust(ctx context.Context, productID int64, delta int32) (cartdomain.CartItem, error)
	Remove(ctx context.Context, productID int64) error
	PlaceOrder(ctx context.Context, snap orderdomain.Snapshot) (orderdomain.Order, error)
}

// ProductReader supplies catalog metadata for display.
type ProductReader interface {
	GetProduct(ctx context.Context, id int64) (catalogdomain.Product, error)
}

// Line is a cart line enriched with catalog metadata for display.
type Line struct {
	cartdomain.CartItem
	Title string
	Image string
}

// Client mirrors the server-held cart for a UI. The server is always
// authoritative: visible state changes only after a call resolves, never
// optimistically, and a successful Refresh replaces local state wholesale.
// On failure the prior state is retained and LastErr is set; there are no
// automatic retries.
type Client struct {
	api           API
	products      ProductReader
	maxConcurrent int

	mu      sync.Mutex
	items   []Line
	status  Status
	lastErr error
}

func New(api API, products ProductReader, maxConcurrent int) *Client {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &Client{
		api:           api,
		products:      products,
		maxConcurrent: maxConcurrent,
		status:        StatusIdle,
	}
}

// Refresh fetches the authoritative list and enriches each line with catalog
// metadata, one concurrent lookup per line. Any items held locally before a
// successful fetch are discarded; there is no merge step.
func (c *Client) Refresh(ctx context.Context) error {
	c.setStatus(StatusLoading)

	items, err := c.api.List(ctx)
	if err != nil {
		c.fail(err)
		return err
	}

	lines := make([]Line, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)

	for idx := range items {
		idx := idx
		g.Go(func() error {
			it := items[idx]
			product, err := c.products.GetProduct(gctx, it.ProductID)
			if err != nil {
				return err
			}
			lines[idx] = Line{
				CartItem: it,
				Title:    product.Title,
				Image:    product.Image,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.fail(err)
		return err
	}

	c.mu.Lock()
	c.items = lines
	c.status = StatusSucceeded
	c.lastErr = nil
	c.mu.Unlock()
	return nil
}

// Add dispatches one awaited add of quantity 1 at the product's current
// catalog price, then folds the server's answer into local state.
func (c *Client) Add(ctx context.Context, product catalogdomain.Product) error {
	item, err := c.api.Add(ctx, product.ID, 1, product.Price)
	if err != nil {
		c.fail(err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].CartItem = item
			return nil
		}
	}
	c.items = append(c.items, Line{CartItem: item, Title: product.Title, Image: product.Image})
	return nil
}

func (c *Client) Increment(ctx context.Context, productID int64) error {
	return c.adjust(ctx, productID, 1)
}

// Decrement is a no-op at quantity 1: the line clamps, it never deletes.
func (c *Client) Decrement(ctx context.Context, productID int64) error {
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ProductID == productID && c.items[i].Quantity <= 1 {
			c.mu.Unlock()
			return nil
		}
	}
	c.mu.Unlock()
	return c.adjust(ctx, productID, -1)
}

func (c *Client) adjust(ctx context.Context, productID int64, delta int32) error {
	item, err := c.api.Adjust(ctx, productID, delta)
	if err != nil {
		c.fail(err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].CartItem = item
			break
		}
	}
	return nil
}

func (c *Client) Remove(ctx context.Context, productID int64) error {
	if err := c.api.Remove(ctx, productID); err != nil {
		c.fail(err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil
	kept := c.items[:0]
	for _, line := range c.items {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	c.items = kept
	return nil
}

// Checkout sends the current local snapshot once. The order reflects exactly
// what this client displays, even if the server cart moved meanwhile.
func (c *Client) Checkout(ctx context.Context) (orderdomain.Order, error) {
	c.mu.Lock()
	snap := orderdomain.Snapshot{TotalAmount: decimal.Zero}
	for _, line := range c.items {
		snap.Items = append(snap.Items, orderdomain.SnapshotLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
		lineTotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		snap.TotalAmount = snap.TotalAmount.Add(lineTotal)
	}
	c.mu.Unlock()

	if len(snap.Items) == 0 {
		return orderdomain.Order{}, ErrEmptyCart
	}

	order, err := c.api.PlaceOrder(ctx, snap)
	if err != nil {
		c.fail(err)
		return orderdomain.Order{}, err
	}

	c.mu.Lock()
	c.items = nil
	c.lastErr = nil
	c.mu.Unlock()
	return order, nil
}

// Items returns a copy of the mirrored lines in server order.
func (c *Client) Items() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Client) LastErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Client) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	c.status = StatusFailed
	c.lastErr = err
	c.mu.Unlock()
}

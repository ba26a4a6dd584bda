package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mrobles-dev/tienda/internal/catalog/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnavailable     = errors.New("catalog unavailable")
)

// Client talks to the external product source. It owns no data; everything
// it returns belongs to the upstream catalog.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	if err := c.getJSON(ctx, fmt.Sprintf("%s/products/%d", c.baseURL, id), &p); err != nil {
		return domain.Product{}, err
	}
	// The upstream answers 200 with an empty body for unknown ids.
	if p.ID == 0 {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var ps []domain.Product
	if err := c.getJSON(ctx, c.baseURL+"/products", &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

func (c *Client) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	var ps []domain.Product
	u := c.baseURL + "/products/category/" + url.PathEscape(category)
	if err := c.getJSON(ctx, u, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return nil
}

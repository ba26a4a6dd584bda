package cartsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	cartdomain "github.com/mrobles-dev/tienda/internal/cart/domain"
	orderdomain "github.com/mrobles-dev/tienda/internal/order/domain"
)

// RESTClient implements API against the storefront's HTTP surface, sending
// the bearer token on every call.
type RESTClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewRESTClient(baseURL, token string) *RESTClient {
	return &RESTClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *RESTClient) List(ctx context.Context) ([]cartdomain.CartItem, error) {
	var out struct {
		Items []cartdomain.CartItem `json:"items"`
	}
	if err := r.do(ctx, http.MethodGet, "/api/cart", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (r *RESTClient) Add(ctx context.Context, productID int64, quantity int32, price decimal.Decimal) (cartdomain.CartItem, error) {
	body := map[string]interface{}{
		"productId": productID,
		"quantity":  quantity,
		"price":     price,
	}
	var out struct {
		Item cartdomain.CartItem `json:"item"`
	}
	if err := r.do(ctx, http.MethodPost, "/api/cart", body, &out); err != nil {
		return cartdomain.CartItem{}, err
	}
	return out.Item, nil
}

func (r *RESTClient) Adjust(ctx context.Context, productID int64, delta int32) (cartdomain.CartItem, error) {
	body := map[string]interface{}{"delta": delta}
	var out struct {
		Item cartdomain.CartItem `json:"item"`
	}
	path := fmt.Sprintf("/api/cart/item/%d", productID)
	if err := r.do(ctx, http.MethodPatch, path, body, &out); err != nil {
		return cartdomain.CartItem{}, err
	}
	return out.Item, nil
}

func (r *RESTClient) Remove(ctx context.Context, productID int64) error {
	path := fmt.Sprintf("/api/cart/item/%d", productID)
	return r.do(ctx, http.MethodDelete, path, nil, nil)
}

func (r *RESTClient) PlaceOrder(ctx context.Context, snap orderdomain.Snapshot) (orderdomain.Order, error) {
	items := make([]map[string]interface{}, 0, len(snap.Items))
	for _, line := range snap.Items {
		items = append(items, map[string]interface{}{
			"productId": line.ProductID,
			"quantity":  line.Quantity,
			"price":     line.Price,
		})
	}
	body := map[string]interface{}{
		"items":       items,
		"totalAmount": snap.TotalAmount,
	}
	var out struct {
		Order orderdomain.Order `json:"order"`
	}
	if err := r.do(ctx, http.MethodPost, "/api/checkout", body, &out); err != nil {
		return orderdomain.Order{}, err
	}
	return out.Order, nil
}

func (r *RESTClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		buf = bytes.NewBuffer(data)
	} else {
		buf = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s %s: %s (%d)", method, path, apiErr.Error, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

package httpapi_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authapp "github.com/mrobles-dev/tienda/internal/auth/app"
	authdomain "github.com/mrobles-dev/tienda/internal/auth/domain"
	"github.com/mrobles-dev/tienda/internal/auth/token"
	cartapp "github.com/mrobles-dev/tienda/internal/cart/app"
	cartdomain "github.com/mrobles-dev/tienda/internal/cart/domain"
	catalogapp "github.com/mrobles-dev/tienda/internal/catalog/app"
	"github.com/mrobles-dev/tienda/internal/catalog/cache"
	catalogdomain "github.com/mrobles-dev/tienda/internal/catalog/domain"
	"github.com/mrobles-dev/tienda/internal/httpapi"
	orderapp "github.com/mrobles-dev/tienda/internal/order/app"
	orderdomain "github.com/mrobles-dev/tienda/internal/order/domain"
	"github.com/mrobles-dev/tienda/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- doubles -------------------------------------------------------------

type cartRepoStub struct {
	mutations atomic.Int64
	cartID    string
	userID    int64
	items     []cartdomain.CartItem
}

func newCartRepoStub() *cartRepoStub {
	return &cartRepoStub{cartID: uuid.NewString(), userID: -1}
}

func (r *cartRepoStub) GetByUser(_ context.Context, userID int64) (cartdomain.Cart, error) {
	if r.userID != userID {
		return cartdomain.Cart{}, cartapp.ErrCartNotFound
	}
	return cartdomain.Cart{ID: r.cartID, UserID: userID, Items: r.items}, nil
}

func (r *cartRepoStub) GetOrCreate(_ context.Context, userID int64) (cartdomain.Cart, error) {
	if r.userID != userID {
		r.userID = userID
		r.items = nil
	}
	return cartdomain.Cart{ID: r.cartID, UserID: userID, Items: r.items}, nil
}

func (r *cartRepoStub) ListItems(_ context.Context, userID int64) ([]cartdomain.CartItem, error) {
	if r.userID != userID {
		return []cartdomain.CartItem{}, nil
	}
	return append([]cartdomain.CartItem{}, r.items...), nil
}

func (r *cartRepoStub) UpsertItemIncrement(_ context.Context, _ string, item cartdomain.CartItem) (cartdomain.CartItem, bool, error) {
	r.mutations.Add(1)
	for i := range r.items {
		if r.items[i].ProductID == item.ProductID {
			r.items[i].Quantity += item.Quantity
			return r.items[i], false, nil
		}
	}
	item.AddedAt = time.Now()
	r.items = append(r.items, item)
	return item, true, nil
}

func (r *cartRepoStub) SetItemQuantity(_ context.Context, _ string, productID int64, quantity int32) (cartdomain.CartItem, error) {
	r.mutations.Add(1)
	for i := range r.items {
		if r.items[i].ProductID == productID {
			r.items[i].Quantity = quantity
			return r.items[i], nil
		}
	}
	return cartdomain.CartItem{}, cartapp.ErrLineNotFound
}

func (r *cartRepoStub) AdjustItemQuantity(_ context.Context, _ string, productID int64, delta int32) (cartdomain.CartItem, error) {
	r.mutations.Add(1)
	for i := range r.items {
		if r.items[i].ProductID == productID {
			q := r.items[i].Quantity + delta
			if q < 1 {
				q = 1
			}
			r.items[i].Quantity = q
			return r.items[i], nil
		}
	}
	return cartdomain.CartItem{}, cartapp.ErrLineNotFound
}

func (r *cartRepoStub) RemoveItem(_ context.Context, _ string, productID int64) error {
	r.mutations.Add(1)
	kept := r.items[:0]
	for _, it := range r.items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	r.items = kept
	return nil
}

func (r *cartRepoStub) Clear(_ context.Context, _ string) error {
	r.mutations.Add(1)
	r.items = nil
	return nil
}

type userRepoStub struct {
	users map[string]authdomain.User
	next  int64
}

func (r *userRepoStub) Create(_ context.Context, u authdomain.User) (authdomain.User, error) {
	r.next++
	u.ID = r.next
	r.users[u.Email] = u
	return u, nil
}

func (r *userRepoStub) GetByEmail(_ context.Context, email string) (authdomain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return authdomain.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (r *userRepoStub) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

type orderRepoStub struct {
	orders []orderdomain.Order
}

func (r *orderRepoStub) CreateOrderTx(_ context.Context, o orderdomain.Order) (orderdomain.Order, error) {
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now()
	r.orders = append([]orderdomain.Order{o}, r.orders...)
	return o, nil
}

func (r *orderRepoStub) ListByUser(_ context.Context, userID int64) ([]orderdomain.Order, error) {
	out := make([]orderdomain.Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type catalogSourceStub struct{}

func (catalogSourceStub) GetProduct(_ context.Context, id int64) (catalogdomain.Product, error) {
	return catalogdomain.Product{ID: id, Title: "product"}, nil
}
func (catalogSourceStub) ListProducts(context.Context) ([]catalogdomain.Product, error) {
	return []catalogdomain.Product{}, nil
}
func (catalogSourceStub) ListByCategory(context.Context, string) ([]catalogdomain.Product, error) {
	return []catalogdomain.Product{}, nil
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]catalogdomain.Product, error) {
	return nil, cache.ErrCacheMiss
}
func (noopCache) Set(context.Context, string, []catalogdomain.Product) error { return nil }

// --- harness -------------------------------------------------------------

type harness struct {
	router   *gin.Engine
	tokens   *token.Manager
	cartRepo *cartRepoStub
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	tokens := token.NewManager("test-secret", time.Hour)
	cartRepo := newCartRepoStub()
	cartSvc := cartapp.NewService(cartRepo)
	orderSvc := orderapp.NewService(&orderRepoStub{})
	authSvc := authapp.NewService(&userRepoStub{users: map[string]authdomain.User{}}, tokens)
	catalogSvc := catalogapp.NewService(catalogSourceStub{}, noopCache{})

	log := logger.New(logger.Options{Service: "test", Env: "test", Level: "error"})
	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:    httpapi.NewAuthHandler(authSvc),
		Cart:    httpapi.NewCartHandler(cartSvc),
		Order:   httpapi.NewOrderHandler(orderSvc, cartSvc),
		Catalog: httpapi.NewCatalogHandler(catalogSvc),
	}, tokens, log)

	return &harness{router: router, tokens: tokens, cartRepo: cartRepo}
}

func (h *harness) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// --- tests ---------------------------------------------------------------

func TestCartEndpoints_RequireToken(t *testing.T) {
	h := newHarness(t)

	endpoints := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/cart", ""},
		{http.MethodPost, "/api/cart", `{"productId":5,"quantity":1,"price":"10.00"}`},
		{http.MethodPatch, "/api/cart/item/5", `{"quantity":2}`},
		{http.MethodDelete, "/api/cart/item/5", ""},
		{http.MethodPost, "/api/checkout", `{"items":[{"productId":1,"quantity":1,"price":"1.00"}],"totalAmount":"1.00"}`},
		{http.MethodGet, "/api/orders", ""},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			rec := h.do(t, ep.method, ep.path, ep.body, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body map[string]string
			decodeJSON(t, rec, &body)
			assert.NotEmpty(t, body["error"])
		})
	}

	assert.Zero(t, h.cartRepo.mutations.Load(), "unauthenticated request must not mutate state")
}

func TestCartEndpoints_ExpiredTokenRejectedUniformly(t *testing.T) {
	h := newHarness(t)
	expired, err := token.NewManager("test-secret", -time.Minute).Issue(1, "a@b.c", "a")
	require.NoError(t, err)

	for _, path := range []string{"/api/cart", "/api/orders"} {
		rec := h.do(t, http.MethodGet, path, "", expired)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestCartFlow(t *testing.T) {
	h := newHarness(t)
	bearer, err := h.tokens.Issue(1, "ana@example.com", "ana")
	require.NoError(t, err)

	t.Run("empty cart lists as empty items", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/api/cart", "", bearer)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
	})

	t.Run("first add creates the line", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/cart", `{"productId":5,"quantity":1,"price":"10.00"}`, bearer)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body struct {
			Item cartdomain.CartItem `json:"item"`
		}
		decodeJSON(t, rec, &body)
		assert.Equal(t, int64(5), body.Item.ProductID)
		assert.Equal(t, int32(1), body.Item.Quantity)
	})

	t.Run("second add increments, same line", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/cart", `{"productId":5,"quantity":2,"price":"10.00"}`, bearer)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Item cartdomain.CartItem `json:"item"`
		}
		decodeJSON(t, rec, &body)
		assert.Equal(t, int32(3), body.Item.Quantity)

		list := h.do(t, http.MethodGet, "/api/cart", "", bearer)
		var listBody struct {
			Items []cartdomain.CartItem `json:"items"`
		}
		decodeJSON(t, list, &listBody)
		require.Len(t, listBody.Items, 1)
		assert.True(t, listBody.Items[0].Price.Equal(decimal.RequireFromString("10.00")))
	})

	t.Run("patch absolute quantity", func(t *testing.T) {
		rec := h.do(t, http.MethodPatch, "/api/cart/item/5", `{"quantity":7}`, bearer)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Item cartdomain.CartItem `json:"item"`
		}
		decodeJSON(t, rec, &body)
		assert.Equal(t, int32(7), body.Item.Quantity)
	})

	t.Run("patch delta clamps at one", func(t *testing.T) {
		rec := h.do(t, http.MethodPatch, "/api/cart/item/5", `{"delta":-100}`, bearer)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Item cartdomain.CartItem `json:"item"`
		}
		decodeJSON(t, rec, &body)
		assert.Equal(t, int32(1), body.Item.Quantity)
	})

	t.Run("patch with both fields rejected", func(t *testing.T) {
		rec := h.do(t, http.MethodPatch, "/api/cart/item/5", `{"quantity":2,"delta":1}`, bearer)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		rec := h.do(t, http.MethodDelete, "/api/cart/item/5", "", bearer)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = h.do(t, http.MethodDelete, "/api/cart/item/5", "", bearer)
		assert.Equal(t, http.StatusOK, rec.Code)

		list := h.do(t, http.MethodGet, "/api/cart", "", bearer)
		assert.JSONEq(t, `{"items":[]}`, list.Body.String())
	})

	t.Run("patch on missing line is 404", func(t *testing.T) {
		rec := h.do(t, http.MethodPatch, "/api/cart/item/99", `{"quantity":2}`, bearer)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCheckout(t *testing.T) {
	h := newHarness(t)
	bearer, err := h.tokens.Issue(1, "ana@example.com", "ana")
	require.NoError(t, err)

	t.Run("empty items always 400", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/checkout", `{"items":[],"totalAmount":"0"}`, bearer)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("snapshot becomes an order and the cart is cleared", func(t *testing.T) {
		add := h.do(t, http.MethodPost, "/api/cart", `{"productId":1,"quantity":2,"price":"9.99"}`, bearer)
		require.Equal(t, http.StatusCreated, add.Code)

		rec := h.do(t, http.MethodPost, "/api/checkout",
			`{"items":[{"productId":1,"quantity":2,"price":"9.99"}],"totalAmount":"19.98"}`, bearer)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Order orderdomain.Order `json:"order"`
		}
		decodeJSON(t, rec, &body)
		assert.Equal(t, orderdomain.StatusCreated, body.Order.Status)
		assert.True(t, body.Order.TotalAmount.Equal(decimal.RequireFromString("19.98")))

		list := h.do(t, http.MethodGet, "/api/cart", "", bearer)
		assert.JSONEq(t, `{"items":[]}`, list.Body.String())

		orders := h.do(t, http.MethodGet, "/api/orders", "", bearer)
		require.Equal(t, http.StatusOK, orders.Code)
		var got []orderdomain.Order
		decodeJSON(t, orders, &got)
		require.Len(t, got, 1)
		assert.Equal(t, body.Order.ID, got[0].ID)
	})
}

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/register",
		`{"email":"ana@example.com","username":"ana-g","password":"password123"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/login",
		`{"email":"ana@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token string `json:"token"`
	}
	decodeJSON(t, rec, &body)
	require.NotEmpty(t, body.Token)

	claims, err := h.tokens.Verify(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana-g", claims.Username)

	t.Run("wrong password is 401", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/login",
			`{"email":"ana@example.com","password":"nope-nope"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token works against the cart", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/api/cart", "", body.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAddItem_BadPayloads(t *testing.T) {
	h := newHarness(t)
	bearer, err := h.tokens.Issue(1, "a@b.c", "abc")
	require.NoError(t, err)

	cases := []string{
		`{"quantity":1,"price":"1.00"}`,
		`{"productId":5,"price":"1.00"}`,
		`{"productId":5,"quantity":0,"price":"1.00"}`,
		`{"productId":5,"quantity":-1,"price":"1.00"}`,
		`not json`,
	}
	for i, body := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			rec := h.do(t, http.MethodPost, "/api/cart", body, bearer)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	rec := h.do(t, http.MethodPost, "/api/cart", `{"productId":5,"quantity":1,"price":"-2.00"}`, bearer)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "negative price must be rejected")
}

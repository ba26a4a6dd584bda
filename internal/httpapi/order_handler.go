package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	cartapp "github.com/mrobles-dev/tienda/internal/cart/app"
	orderapp "github.com/mrobles-dev/tienda/internal/order/app"
	orderdomain "github.com/mrobles-dev/tienda/internal/order/domain"
)

type OrderHandler struct {
	orders *orderapp.Service
	carts  *cartapp.Service
}

func NewOrderHandler(orders *orderapp.Service, carts *cartapp.Service) *OrderHandler {
	return &OrderHandler{orders: orders, carts: carts}
}

type checkoutItem struct {
	ProductID int64           `json:"productId" binding:"required,gt=0"`
	Quantity  int32           `json:"quantity" binding:"required,gte=1"`
	Price     decimal.Decimal `json:"price"`
}

type checkoutRequest struct {
	Items       []checkoutItem  `json:"items" binding:"required,min=1,dive"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// POST /api/checkout — one-shot conversion of the client's cart snapshot
// into an immutable order. The live cart is not re-read.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "items list is empty or invalid")
		return
	}

	snap := orderdomain.Snapshot{TotalAmount: req.TotalAmount}
	for _, it := range req.Items {
		snap.Items = append(snap.Items, orderdomain.SnapshotLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	userID := currentUserID(c)
	order, err := h.orders.PlaceOrder(c.Request.Context(), userID, snap)
	if err != nil {
		respondError(c, err)
		return
	}

	// The order is already durable; a failed clear only leaves stale cart
	// lines behind.
	if err := h.carts.Clear(c.Request.Context(), userID); err != nil {
		slog.Warn("cart clear after checkout failed", slog.Int64("userID", userID), slog.Any("err", err))
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GET /api/orders — newest first, lines nested.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

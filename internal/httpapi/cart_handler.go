package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	cartapp "github.com/mrobles-dev/tienda/internal/cart/app"
)

type CartHandler struct {
	svc *cartapp.Service
}

func NewCartHandler(svc *cartapp.Service) *CartHandler {
	return &CartHandler{svc: svc}
}

// GET /api/cart
func (h *CartHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type addItemRequest struct {
	ProductID int64           `json:"productId" binding:"required,gt=0"`
	Quantity  int32           `json:"quantity" binding:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
}

// POST /api/cart — 201 when a new line was created, 200 when an existing
// line was incremented.
func (h *CartHandler) Add(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid cart item payload")
		return
	}

	item, created, err := h.svc.AddItem(c.Request.Context(), currentUserID(c), req.ProductID, req.Quantity, req.Price)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"item": item})
}

type updateItemRequest struct {
	Quantity *int32 `json:"quantity"`
	Delta    *int32 `json:"delta"`
}

// PATCH /api/cart/item/:productId — either an absolute quantity overwrite or
// an atomic signed delta; exactly one of the two fields must be present.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid quantity payload")
		return
	}
	if (req.Quantity == nil) == (req.Delta == nil) {
		respondBadRequest(c, "provide exactly one of quantity or delta")
		return
	}

	var item interface{}
	var err error
	if req.Quantity != nil {
		item, err = h.svc.SetQuantity(c.Request.Context(), currentUserID(c), productID, *req.Quantity)
	} else {
		item, err = h.svc.AdjustQuantity(c.Request.Context(), currentUserID(c), productID, *req.Delta)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// DELETE /api/cart/item/:productId — idempotent; a missing line succeeds.
func (h *CartHandler) Remove(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	if err := h.svc.RemoveItem(c.Request.Context(), currentUserID(c), productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func productIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid product id")
		return 0, false
	}
	return id, true
}

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/mrobles-dev/tienda/internal/catalog/app"
)

type CatalogHandler struct {
	svc *catalogapp.Service
}

func NewCatalogHandler(svc *catalogapp.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// GET /api/products
func (h *CatalogHandler) List(c *gin.Context) {
	products, err := h.svc.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GET /api/products/:id
func (h *CatalogHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid product id")
		return
	}

	product, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// GET /api/categories/:category
func (h *CatalogHandler) ListByCategory(c *gin.Context) {
	products, err := h.svc.ListByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

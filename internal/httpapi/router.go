package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth    *AuthHandler
	Cart    *CartHandler
	Order   *OrderHandler
	Catalog *CatalogHandler
}

// NewRouter wires the public surface. Everything that touches a user's cart
// or orders sits behind RequireAuth; catalog browsing and auth do not.
func NewRouter(h Handlers, verifier TokenVerifier, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	api := r.Group("/api")
	{
		api.POST("/register", h.Auth.Register)
		api.POST("/login", h.Auth.Login)

		api.GET("/products", h.Catalog.List)
		api.GET("/products/:id", h.Catalog.Get)
		api.GET("/categories/:category", h.Catalog.ListByCategory)

		authed := api.Group("", RequireAuth(verifier))
		{
			authed.GET("/cart", h.Cart.List)
			authed.POST("/cart", h.Cart.Add)
			authed.PATCH("/cart/item/:productId", h.Cart.UpdateItem)
			authed.DELETE("/cart/item/:productId", h.Cart.Remove)

			authed.POST("/checkout", h.Order.Checkout)
			authed.GET("/orders", h.Order.List)
		}
	}

	return r
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("took", time.Since(start)),
		)
	}
}

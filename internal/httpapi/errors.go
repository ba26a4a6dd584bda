package httpapi

import (
	"errors"
	"net/http"

	authapp "github.com/mrobles-dev/tienda/internal/auth/app"
	"github.com/mrobles-dev/tienda/internal/auth/token"
	cartapp "github.com/mrobles-dev/tienda/internal/cart/app"
	"github.com/mrobles-dev/tienda/internal/catalog/upstream"
	orderapp "github.com/mrobles-dev/tienda/internal/order/app"
)

// statusFromError maps domain errors to an HTTP status and a safe message.
// Expired and malformed tokens map identically on every endpoint. Unknown
// errors become a generic 500; their details stay in the logs.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, token.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, authapp.ErrBadCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, authapp.ErrUserExists):
		return http.StatusBadRequest, "user or email already exists"
	case errors.Is(err, authapp.ErrInvalidInput),
		errors.Is(err, cartapp.ErrInvalidInput),
		errors.Is(err, orderapp.ErrInvalidInput):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, cartapp.ErrCartNotFound):
		return http.StatusNotFound, "cart not found"
	case errors.Is(err, cartapp.ErrLineNotFound):
		return http.StatusNotFound, "cart line not found"
	case errors.Is(err, upstream.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, upstream.ErrUnavailable):
		return http.StatusBadGateway, "catalog unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

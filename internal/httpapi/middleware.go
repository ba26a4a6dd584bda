package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrobles-dev/tienda/internal/auth/token"
)

const userIDKey = "userID"

// TokenVerifier resolves a bearer token to claims. Satisfied by
// token.Manager.
type TokenVerifier interface {
	Verify(tokenString string) (token.Claims, error)
}

// RequireAuth rejects requests without a valid Authorization bearer token
// before any handler touches persisted state.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := verifier.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

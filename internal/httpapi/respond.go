package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, err error) {
	status, msg := statusFromError(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", slog.String("path", c.FullPath()), slog.Any("err", err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func respondBadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

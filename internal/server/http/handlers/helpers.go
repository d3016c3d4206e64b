package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/cryptopay/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	id, _ := c.Get(middleware.UserIDContextKey)
	userID, _ := id.(int64)
	return userID
}

// writeList answers 204 for an empty history and a JSON array otherwise.
func writeList[T, R any](c *gin.Context, items []T, convert func(T) R) {
	if len(items) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	resp := make([]R, 0, len(items))
	for _, item := range items {
		resp = append(resp, convert(item))
	}
	c.JSON(http.StatusOK, resp)
}

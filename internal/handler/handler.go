package handler

import (
	"dealership/internal/apperror"
	"dealership/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP status codes through the
// error taxonomy and writes the standard error envelope.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	c.JSON(status, response.Error(status, err.Error()))
}

// contextUserID returns the authenticated user's ID from the gin context,
// set by the auth middleware. Empty when unauthenticated.
func contextUserID(c *gin.Context) string {
	raw, exists := c.Get("userID")
	if !exists {
		return ""
	}
	id, _ := raw.(string)
	return id
}

package handlers

import "github.com/gin-gonic/gin"

// currentUserID reads the authenticated user id placed in the gin context by
// the JWT middleware.
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

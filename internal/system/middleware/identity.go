package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/system/security"
)

// IdentityMiddleware copies the user id asserted by the auth layer in front of the
// service into the request context. It never rejects a request; the permission gate
// decides what an absent identity means for each action.
func IdentityMiddleware(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := strings.TrimSpace(c.GetHeader(header)); userID != "" {
			c.Request = c.Request.WithContext(security.WithUserID(c.Request.Context(), userID))
		}
		c.Next()
	}
}

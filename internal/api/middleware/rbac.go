package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/workforce-ai/roster-import/internal/api/response"
)

// RequireRole returns middleware that enforces role-based access control
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleInterface, exists := c.Get(RoleKey)
		if !exists {
			response.Forbidden(c, "operator role not found in context")
			c.Abort()
			return
		}

		role, ok := roleInterface.(string)
		if !ok {
			response.Forbidden(c, "invalid role format")
			c.Abort()
			return
		}

		if !slices.Contains(allowedRoles, role) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

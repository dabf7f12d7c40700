package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/workforce-ai/roster-import/internal/api/response"
	"github.com/workforce-ai/roster-import/internal/config"
	"github.com/workforce-ai/roster-import/pkg/auth"
)

// Context keys set by AuthMiddleware.
const (
	OperatorIDKey = "operator_id"
	RoleKey       = "role"
)

// AuthMiddleware validates JWT tokens from the Authorization header
func AuthMiddleware(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, bearerPrefix)

		claims, err := auth.ValidateToken(token, cfg.Secret)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set(OperatorIDKey, claims.OperatorID)
		c.Set(RoleKey, claims.Role)

		c.Next()
	}
}

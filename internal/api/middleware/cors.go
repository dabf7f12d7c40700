package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ImportIDHeader names the import session a response is about.
const ImportIDHeader = "X-Import-ID"

var (
	corsAllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}
	corsAllowedHeaders = []string{"Origin", "Content-Type", "Authorization", CorrelationHeader, "Idempotency-Key"}
	corsExposedHeaders = []string{CorrelationHeader, ImportIDHeader, "Location"}
)

// CORSMiddleware lets the operator console call the import API from the browser.
// In production, AllowOrigins should be restricted to the operator console domain.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", strings.Join(corsAllowedMethods, ", "))
		c.Header("Access-Control-Allow-Headers", strings.Join(corsAllowedHeaders, ", "))
		c.Header("Access-Control-Expose-Headers", strings.Join(corsExposedHeaders, ", "))
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

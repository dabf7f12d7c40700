package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationHeader carries the request's correlation id in and out.
	CorrelationHeader = "X-Correlation-ID"
	// CorrelationIDKey is the gin context key for the correlation id.
	CorrelationIDKey = "correlation_id"

	maxCorrelationIDLength = 128
)

// CorrelationMiddleware keeps the caller's X-Correlation-ID or assigns a new one,
// so an operator console request can be followed through the import logs.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationHeader)
		if !validCorrelationID(correlationID) {
			correlationID = uuid.New().String()
		}

		c.Set(CorrelationIDKey, correlationID)
		c.Header(CorrelationHeader, correlationID)

		c.Next()
	}
}

// validCorrelationID accepts short printable ASCII ids; anything else is replaced
// before it reaches response headers or logs.
func validCorrelationID(id string) bool {
	if id == "" || len(id) > maxCorrelationIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// Package middleware holds the gin middleware chain of the HTTP server.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/complyhub/compliance-management-api/internal/system/constants"
	"github.com/complyhub/compliance-management-api/internal/system/log"
)

// CorrelationIDMiddleware reads or generates the request correlation id, echoes it
// back and stores it on the request context for loggers.
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := extractCorrelationID(c)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Set(log.LoggerKeyCorrelationID, correlationID)
		c.Header(constants.HeaderCorrelationID, correlationID)
		c.Request = c.Request.WithContext(log.ContextWithCorrelationID(c.Request.Context(), correlationID))
		c.Next()
	}
}

func extractCorrelationID(c *gin.Context) string {
	headers := []string{constants.HeaderCorrelationID, "X-Request-ID", "X-Trace-ID"}
	for _, header := range headers {
		if id := c.GetHeader(header); id != "" {
			return id
		}
	}
	return ""
}

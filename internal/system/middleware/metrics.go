package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/system/metrics"
)

// MetricsMiddleware records request count and latency by matched route.
func MetricsMiddleware(recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	prommetrics "github.com/turtacn/competiscope/internal/infrastructure/monitoring/prometheus"
)

// Metrics observes request latency per route template and status.  The
// route template keeps cardinality bounded regardless of path parameters.
func Metrics(m *prommetrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(route, c.Writer.Status(), time.Since(start))
	}
}

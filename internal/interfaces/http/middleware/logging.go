package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
)

// Logging records one structured line per request.  Client errors log at
// warn, server errors at error, everything else at info.
func Logging(log logging.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", status),
			logging.Duration("elapsed", time.Since(start)),
			logging.String("request_id", c.GetString(ContextRequestID)),
			logging.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Error("Request failed", fields...)
		case status >= 400:
			log.Warn("Request rejected", fields...)
		default:
			log.Info("Request served", fields...)
		}
	}
}

// Package middleware holds the gin middleware chain shared by all routes.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID is the inbound/outbound correlation header.
	HeaderRequestID = "X-Request-ID"

	// ContextRequestID is the gin context key the logger reads.
	ContextRequestID = "request_id"
)

// RequestID propagates the caller's request id or mints a new one.  The id
// is echoed on the response and stored in the gin context for logging.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

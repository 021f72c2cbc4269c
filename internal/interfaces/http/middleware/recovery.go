package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/competiscope/pkg/errors"
)

// Recovery converts panics into 500 responses with the standard error body.
func Recovery(log logging.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Handler panic",
					logging.String("path", c.Request.URL.Path),
					logging.String("request_id", c.GetString(ContextRequestID)),
					logging.Any("panic", r),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    string(errors.CodeInternal),
					"message": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// Package handlers implements the REST endpoints of the comparison service.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/competiscope/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError maps an application error onto its HTTP status and the
// standard body.  Non-AppError values become opaque 500s.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	body := ErrorResponse{Code: string(code), Message: err.Error()}
	if status == http.StatusInternalServerError && code == errors.CodeUnknown {
		body.Message = "internal server error"
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the request body, translating failures into the standard
// invalid-parameter error.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondError(c, errors.Wrap(err, errors.CodeInvalidParam, "invalid request body"))
		return false
	}
	return true
}

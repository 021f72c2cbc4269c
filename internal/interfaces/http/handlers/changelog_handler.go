package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	comparisonapp "github.com/turtacn/competiscope/internal/application/comparison"
	"github.com/turtacn/competiscope/pkg/errors"
)

// ComparisonState exposes the current comparison snapshot to handlers that
// follow it without mutating it.
type ComparisonState interface {
	State() comparisonapp.State
}

// ChangeLogHandler serves the incremental change-log feed for one company at
// a time.  The feed follows the comparison's period and filters; switching
// company, period, or filters resets the accumulated pages.
type ChangeLogHandler struct {
	pager *comparisonapp.ChangeLogPager
	state ComparisonState
}

// NewChangeLogHandler wires the handler around a shared pager and the
// comparison state it follows.
func NewChangeLogHandler(pager *comparisonapp.ChangeLogPager, state ComparisonState) *ChangeLogHandler {
	return &ChangeLogHandler{pager: pager, state: state}
}

// Get returns the accumulated change log for a company, loading the first
// page on demand.  Passing more=true loads the next page before responding.
// GET /api/v1/companies/:id/change-log
func (h *ChangeLogHandler) Get(c *gin.Context) {
	companyID := c.Param("id")
	if companyID == "" {
		respondError(c, errors.InvalidParam("company id is required"))
		return
	}

	snap := h.state.State()
	key := comparisonapp.ChangeLogKey{
		CompanyID: companyID,
		Period:    snap.Period,
		Filters:   snap.Filters,
	}
	switched := !h.pager.Key().Equal(key)
	if switched {
		h.pager.Reset(key)
	}

	if switched || len(h.pager.View().Events) == 0 || c.Query("more") == "true" {
		if err := h.pager.LoadMore(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, h.pager.View())
}

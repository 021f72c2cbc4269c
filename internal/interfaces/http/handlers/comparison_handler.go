package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	comparisonapp "github.com/turtacn/competiscope/internal/application/comparison"
	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// ComparisonHandler serves the comparison view state.
type ComparisonHandler struct {
	comparisons *comparisonapp.Service
}

// NewComparisonHandler wires the handler.
func NewComparisonHandler(comparisons *comparisonapp.Service) *ComparisonHandler {
	return &ComparisonHandler{comparisons: comparisons}
}

// Configure replaces the whole comparison setup and refetches once.
// POST /api/v1/comparisons
func (h *ComparisonHandler) Configure(c *gin.Context) {
	var req analytics.ComparisonRequest
	if !bindJSON(c, &req) {
		return
	}

	state, err := h.comparisons.Configure(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Current returns the comparison state as last fetched.
// GET /api/v1/comparisons/current
func (h *ComparisonHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, h.comparisons.State())
}

// Refresh forces a refetch of the current setup.
// POST /api/v1/comparisons/refresh
func (h *ComparisonHandler) Refresh(c *gin.Context) {
	state, err := h.comparisons.Refresh(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type addSubjectRequest struct {
	Subject analytics.SubjectRef `json:"subject"`
}

// AddSubject appends one subject.
// POST /api/v1/comparisons/subjects
func (h *ComparisonHandler) AddSubject(c *gin.Context) {
	var req addSubjectRequest
	if !bindJSON(c, &req) {
		return
	}

	state, err := h.comparisons.AddSubject(c.Request.Context(), req.Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// RemoveSubject drops one subject by key.
// DELETE /api/v1/comparisons/subjects/:key
func (h *ComparisonHandler) RemoveSubject(c *gin.Context) {
	state, err := h.comparisons.RemoveSubject(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type selectionRequest struct {
	Side string `json:"side"`
	Key  string `json:"key"`
}

// Select applies an explicit A/B choice.
// POST /api/v1/comparisons/selection
func (h *ComparisonHandler) Select(c *gin.Context) {
	var req selectionRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Side != "left" && req.Side != "right" {
		respondError(c, errors.InvalidParam("side must be left or right"))
		return
	}
	c.JSON(http.StatusOK, h.comparisons.Select(req.Side, req.Key))
}

// SetFilters replaces the filter state and refetches.
// PUT /api/v1/comparisons/filters
func (h *ComparisonHandler) SetFilters(c *gin.Context) {
	var filters analytics.FilterState
	if !bindJSON(c, &filters) {
		return
	}

	state, err := h.comparisons.SetFilters(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	analyticsapp "github.com/turtacn/competiscope/internal/application/analytics"
	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// defaultOverviewLookbackDays bounds the series window when the caller
// passes no explicit range.
const defaultOverviewLookbackDays = 30

// AnalyticsHandler serves single-company overviews and backend job triggers.
type AnalyticsHandler struct {
	overviews *analyticsapp.OverviewService
	jobs      *analyticsapp.JobService
}

// NewAnalyticsHandler wires the handler.
func NewAnalyticsHandler(overviews *analyticsapp.OverviewService, jobs *analyticsapp.JobService) *AnalyticsHandler {
	return &AnalyticsHandler{overviews: overviews, jobs: jobs}
}

// Overview returns the snapshot, score series, and graph edges for one
// company.  Parts the backend has not computed yet come back empty; a partial
// overview with a real failure is still returned alongside the error status.
// GET /api/v1/companies/:id/overview
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	period := analytics.Period(c.DefaultQuery("period", string(analytics.PeriodDaily)))

	to := time.Now()
	from := to.AddDate(0, 0, -defaultOverviewLookbackDays)
	if v := c.Query("date_from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(c, errors.InvalidParam("date_from must be YYYY-MM-DD"))
			return
		}
		from = parsed
	}
	if v := c.Query("date_to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(c, errors.InvalidParam("date_to must be YYYY-MM-DD"))
			return
		}
		to = parsed
	}

	overview, err := h.overviews.Overview(c.Request.Context(), c.Param("id"), period, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

type recomputeRequest struct {
	CompanyIDs []string         `json:"company_ids"`
	Period     analytics.Period `json:"period"`
}

// Recompute asks the backend to recompute analytics.
// POST /api/v1/analytics/recompute
func (h *AnalyticsHandler) Recompute(c *gin.Context) {
	var req recomputeRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Period == "" {
		req.Period = analytics.PeriodDaily
	}

	job, err := h.jobs.TriggerRecompute(c.Request.Context(), req.CompanyIDs, req.Period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

// GraphSync asks the backend to rebuild the knowledge graph.
// POST /api/v1/analytics/graph/sync
func (h *AnalyticsHandler) GraphSync(c *gin.Context) {
	job, err := h.jobs.TriggerGraphSync(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

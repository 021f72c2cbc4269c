package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	comparisonapp "github.com/turtacn/competiscope/internal/application/comparison"
	presetapp "github.com/turtacn/competiscope/internal/application/preset"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// PresetHandler serves report preset CRUD and preset application.
type PresetHandler struct {
	presets     *presetapp.Service
	comparisons *comparisonapp.Service
}

// NewPresetHandler wires the handler.
func NewPresetHandler(presets *presetapp.Service, comparisons *comparisonapp.Service) *PresetHandler {
	return &PresetHandler{presets: presets, comparisons: comparisons}
}

// List returns all presets, or only favorites with favorites=true.
// GET /api/v1/report-presets
func (h *PresetHandler) List(c *gin.Context) {
	presets, err := h.presets.List(c.Request.Context(), c.Query("favorites") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	if presets == nil {
		presets = []*analytics.ReportPreset{}
	}
	c.JSON(http.StatusOK, presets)
}

// Get returns one preset.
// GET /api/v1/report-presets/:id
func (h *PresetHandler) Get(c *gin.Context) {
	p, err := h.presets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create stores a new preset.
// POST /api/v1/report-presets
func (h *PresetHandler) Create(c *gin.Context) {
	var req analytics.ReportPreset
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.presets.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update replaces an existing preset.
// PUT /api/v1/report-presets/:id
func (h *PresetHandler) Update(c *gin.Context) {
	var req analytics.ReportPreset
	if !bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")

	updated, err := h.presets.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a preset.
// DELETE /api/v1/report-presets/:id
func (h *PresetHandler) Delete(c *gin.Context) {
	if err := h.presets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// SetFavorite toggles the favorite flag.
// PUT /api/v1/report-presets/:id/favorite
func (h *PresetHandler) SetFavorite(c *gin.Context) {
	var req favoriteRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.presets.SetFavorite(c.Request.Context(), c.Param("id"), req.Favorite); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Apply loads a preset into the comparison view: its companies become the
// subject list and its filters replace the current filter state.
// POST /api/v1/report-presets/:id/apply
func (h *PresetHandler) Apply(c *gin.Context) {
	refs, filters, err := h.presets.Apply(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.comparisons.Store().SetFilters(filters)
	state, err := h.comparisons.SetSubjects(c.Request.Context(), refs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	exportapp "github.com/turtacn/competiscope/internal/application/export"
)

// ExportHandler renders comparison exports.
type ExportHandler struct {
	exports *exportapp.Service
}

// NewExportHandler wires the handler.
func NewExportHandler(exports *exportapp.Service) *ExportHandler {
	return &ExportHandler{exports: exports}
}

type exportRequest struct {
	Format                      string `json:"format"`
	IncludeNotificationSettings bool   `json:"include_notification_settings"`
	IncludePresets              bool   `json:"include_presets"`
}

type exportResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	DownloadURL string `json:"download_url,omitempty"`
}

// Export renders the current comparison in the requested format.  When an
// artifact store is configured the response carries a download URL; with
// download=inline the document itself is streamed back.
// POST /api/v1/export
func (h *ExportHandler) Export(c *gin.Context) {
	var req exportRequest
	if !bindJSON(c, &req) {
		return
	}

	format, err := exportapp.ParseFormat(req.Format)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.exports.Export(c.Request.Context(), exportapp.Request{
		Format:                      format,
		IncludeNotificationSettings: req.IncludeNotificationSettings,
		IncludePresets:              req.IncludePresets,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("download") == "inline" {
		c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
		c.Data(http.StatusOK, result.ContentType, result.Data)
		return
	}

	resp := exportResponse{
		Filename:    result.Filename,
		ContentType: result.ContentType,
		Size:        len(result.Data),
	}
	if result.Artifact != nil {
		resp.DownloadURL = result.Artifact.DownloadURL
	}
	c.JSON(http.StatusOK, resp)
}

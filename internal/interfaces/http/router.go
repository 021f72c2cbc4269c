// Package http exposes the REST surface of the comparison service.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/turtacn/competiscope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/competiscope/internal/interfaces/http/handlers"
	"github.com/turtacn/competiscope/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.
type RouterConfig struct {
	Comparison *handlers.ComparisonHandler
	ChangeLog  *handlers.ChangeLogHandler
	Analytics  *handlers.AnalyticsHandler
	Presets    *handlers.PresetHandler
	Export     *handlers.ExportHandler
	Health     *handlers.HealthHandler

	AllowedOrigins []string
	Logger         logging.Logger
	Metrics        *prommetrics.Metrics
	Mode           string
}

// NewRouter builds the complete gin route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	if cfg.Health != nil {
		r.GET("/healthz", cfg.Health.Liveness)
		r.GET("/readyz", cfg.Health.Readiness)
	}

	api := r.Group("/api/v1")

	if h := cfg.Comparison; h != nil {
		api.POST("/comparisons", h.Configure)
		api.GET("/comparisons/current", h.Current)
		api.POST("/comparisons/refresh", h.Refresh)
		api.POST("/comparisons/selection", h.Select)
		api.PUT("/comparisons/filters", h.SetFilters)
		api.POST("/comparisons/subjects", h.AddSubject)
		api.DELETE("/comparisons/subjects/:key", h.RemoveSubject)
	}

	if h := cfg.ChangeLog; h != nil {
		api.GET("/companies/:id/change-log", h.Get)
	}

	if h := cfg.Analytics; h != nil {
		api.GET("/companies/:id/overview", h.Overview)
		api.POST("/analytics/recompute", h.Recompute)
		api.POST("/analytics/graph/sync", h.GraphSync)
	}

	if h := cfg.Presets; h != nil {
		api.GET("/report-presets", h.List)
		api.POST("/report-presets", h.Create)
		api.GET("/report-presets/:id", h.Get)
		api.PUT("/report-presets/:id", h.Update)
		api.DELETE("/report-presets/:id", h.Delete)
		api.PUT("/report-presets/:id/favorite", h.SetFavorite)
		api.POST("/report-presets/:id/apply", h.Apply)
	}

	if h := cfg.Export; h != nil {
		api.POST("/export", h.Export)
	}

	return r
}

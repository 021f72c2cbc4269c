// Package prometheus exposes the service's metrics collector.  All counters
// and histograms are registered on a private registry so tests can construct
// independent collectors without duplicate-registration panics.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates every metric the service emits.
type Metrics struct {
	registry *prometheus.Registry

	ComparisonFetches  *prometheus.CounterVec
	StaleDiscards      prometheus.Counter
	ChangeLogPages     *prometheus.CounterVec
	ExportRenders      *prometheus.CounterVec
	BackendRequests    *prometheus.HistogramVec
	HTTPRequestSeconds *prometheus.HistogramVec
}

// NewMetrics constructs a Metrics instance backed by a fresh registry with
// the standard Go and process collectors attached.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		ComparisonFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "competiscope",
			Name:      "comparison_fetches_total",
			Help:      "Comparison fetches issued, by outcome (applied, discarded, failed).",
		}, []string{"outcome"}),
		StaleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "competiscope",
			Name:      "stale_results_discarded_total",
			Help:      "Fetch results discarded because a newer generation already applied.",
		}),
		ChangeLogPages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "competiscope",
			Name:      "changelog_pages_total",
			Help:      "Change-log pages fetched, by outcome (ok, failed, skipped).",
		}, []string{"outcome"}),
		ExportRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "competiscope",
			Name:      "export_renders_total",
			Help:      "Export payload renders, by format.",
		}, []string{"format"}),
		BackendRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "competiscope",
			Name:      "backend_request_seconds",
			Help:      "Latency of analytics-backend calls, by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		HTTPRequestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "competiscope",
			Name:      "http_request_seconds",
			Help:      "Latency of inbound HTTP requests, by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}

	reg.MustRegister(
		m.ComparisonFetches,
		m.StaleDiscards,
		m.ChangeLogPages,
		m.ExportRenders,
		m.BackendRequests,
		m.HTTPRequestSeconds,
	)
	return m
}

// Handler returns the /metrics HTTP handler for this collector's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one inbound request observation.
func (m *Metrics) ObserveHTTP(route string, status int, elapsed time.Duration) {
	m.HTTPRequestSeconds.WithLabelValues(route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObserveBackend records one analytics-backend call observation.
func (m *Metrics) ObserveBackend(operation string, elapsed time.Duration) {
	m.BackendRequests.WithLabelValues(operation).Observe(elapsed.Seconds())
}

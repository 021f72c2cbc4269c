// Package export renders the current comparison into downloadable
// documents.  Rendering is strictly read-only over comparison state: no
// render ever mutates subjects, filters, or fetched results.
package export

import (
	"encoding/json"
	"time"

	comparisonapp "github.com/turtacn/competiscope/internal/application/comparison"
	domain "github.com/turtacn/competiscope/internal/domain/comparison"
	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// Format is a supported export document format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV, FormatHTML:
		return Format(s), nil
	}
	return "", errors.Newf(errors.CodeFormatUnsupported, "unsupported export format %q", s)
}

// ContentType returns the MIME type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json"
	}
}

// SubjectRow pairs a subject with its metric summary, in subject order.
type SubjectRow struct {
	Subject domain.Subject          `json:"subject"`
	Metrics analytics.MetricSummary `json:"metrics"`
}

// Payload is the complete export document model shared by all renderers.
type Payload struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Period      analytics.Period `json:"period"`
	DateFrom    time.Time        `json:"date_from"`
	DateTo      time.Time        `json:"date_to"`

	Rows      []SubjectRow                       `json:"rows"`
	ChangeLog map[string][]analytics.ChangeEvent `json:"change_log,omitempty"`

	NotificationSettings *analytics.NotificationSettings `json:"notification_settings,omitempty"`
	Presets              []*analytics.ReportPreset       `json:"presets,omitempty"`
}

// BuildPayload assembles the export model from a comparison state snapshot.
// Subjects without a metric summary still get a row with zero metrics so
// the export always covers every subject.
func BuildPayload(state comparisonapp.State, now time.Time) (*Payload, error) {
	if state.Result == nil {
		return nil, errors.New(errors.CodeExportRenderFailed, "no comparison data to export")
	}

	metricsByKey := make(map[string]analytics.MetricSummary, len(state.Result.Metrics))
	for _, m := range state.Result.Metrics {
		metricsByKey[m.SubjectKey] = m
	}

	p := &Payload{
		GeneratedAt: now.UTC(),
		Period:      state.Period,
		DateFrom:    state.Result.DateFrom,
		DateTo:      state.Result.DateTo,
		ChangeLog:   state.Result.ChangeLog,
	}
	for _, sub := range state.Subjects {
		m := metricsByKey[sub.Key]
		m.SubjectKey = sub.Key
		p.Rows = append(p.Rows, SubjectRow{Subject: sub, Metrics: m})
	}
	return p, nil
}

// RenderJSON renders the payload as indented JSON.
func RenderJSON(p *Payload) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExportRenderFailed, "failed to render JSON export")
	}
	return data, nil
}

// Package analytics defines the wire-level data types exchanged with the
// analytics backend.  Both the SDK client (pkg/client) and the application
// core share these definitions so that no translation layer is needed at the
// transport boundary.
package analytics

import "time"

// Period is the time-bucketing granularity of analytics snapshots.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Valid reports whether p is one of the supported granularities.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// SubjectType discriminates the two kinds of comparison subjects.
type SubjectType string

const (
	SubjectCompany SubjectType = "company"
	SubjectPreset  SubjectType = "preset"
)

// ProcessingStatus is the outcome of change-event processing.
type ProcessingStatus string

const (
	ProcessingSuccess ProcessingStatus = "success"
	ProcessingSkipped ProcessingStatus = "skipped"
	ProcessingError   ProcessingStatus = "error"
)

// ImpactComponent is one weighted contributor to an impact score.
type ImpactComponent struct {
	ComponentType     string                 `json:"component_type"`
	Weight            float64                `json:"weight"`
	ScoreContribution float64                `json:"score_contribution"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

// Snapshot is one time-bucketed analytics record for a subject.  All scores
// are backend-computed; in particular TrendDelta must never be recomputed
// from adjacent snapshots on this side (it may legitimately differ when the
// denominator crosses zero or data gaps exist).
type Snapshot struct {
	CompanyID   string    `json:"company_id"`
	Period      Period    `json:"period"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	NewsTotal            int     `json:"news_total"`
	NewsPositive         int     `json:"news_positive"`
	NewsNegative         int     `json:"news_negative"`
	NewsNeutral          int     `json:"news_neutral"`
	NewsAverageSentiment float64 `json:"news_average_sentiment"`
	NewsAveragePriority  float64 `json:"news_average_priority"`

	PricingChanges int `json:"pricing_changes"`
	FeatureUpdates int `json:"feature_updates"`
	FundingEvents  int `json:"funding_events"`

	ImpactScore        float64 `json:"impact_score"`
	InnovationVelocity float64 `json:"innovation_velocity"`
	TrendDelta         float64 `json:"trend_delta"`

	MetricBreakdown map[string]interface{} `json:"metric_breakdown,omitempty"`
	Components      []ImpactComponent      `json:"components,omitempty"`
}

// SeriesPoint is the minimal projection of a Snapshot needed for charting.
type SeriesPoint struct {
	PeriodStart time.Time `json:"period_start"`
	ImpactScore float64   `json:"impact_score"`
}

// Series is the score projection of one subject's snapshots, ordered by
// period start ascending.
type Series struct {
	SubjectKey string        `json:"subject_key"`
	Points     []SeriesPoint `json:"points"`
}

// FieldChange is one field-level diff inside a change event.  Entries are
// tagged either by Field (an updated attribute) or by Change (a structural
// add/remove).
type FieldChange struct {
	Plan     string      `json:"plan,omitempty"`
	Field    string      `json:"field,omitempty"`
	Change   string      `json:"change,omitempty"`
	Previous interface{} `json:"previous,omitempty"`
	Current  interface{} `json:"current,omitempty"`
}

// ChangeEvent is a detected pricing/feature/plan change for a company.
type ChangeEvent struct {
	ID                 string           `json:"id"`
	CompanyID          string           `json:"company_id"`
	SourceType         string           `json:"source_type"`
	ChangeSummary      string           `json:"change_summary"`
	ChangedFields      []FieldChange    `json:"changed_fields,omitempty"`
	DetectedAt         time.Time        `json:"detected_at"`
	ProcessingStatus   ProcessingStatus `json:"processing_status"`
	NotificationStatus string           `json:"notification_status,omitempty"`
	PreviousSnapshotURL string          `json:"previous_snapshot_url,omitempty"`
	CurrentSnapshotURL  string          `json:"current_snapshot_url,omitempty"`
}

// GraphEdge is one knowledge-graph relationship consumed from the backend.
type GraphEdge struct {
	ID               string                 `json:"id"`
	CompanyID        string                 `json:"company_id,omitempty"`
	SourceEntityType string                 `json:"source_entity_type"`
	SourceEntityID   string                 `json:"source_entity_id"`
	TargetEntityType string                 `json:"target_entity_type"`
	TargetEntityID   string                 `json:"target_entity_id"`
	RelationshipType string                 `json:"relationship_type"`
	Confidence       float64                `json:"confidence"`
	Weight           float64                `json:"weight"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// FilterState is the set of content filters applied to a comparison.  An
// empty set or absent value means "no constraint", never "exclude all".
type FilterState struct {
	SourceTypes []string `json:"source_types,omitempty"`
	Topics      []string `json:"topics,omitempty"`
	Sentiments  []string `json:"sentiments,omitempty"`
	MinPriority *float64 `json:"min_priority,omitempty"`
}

// SubjectRef identifies one comparison subject in a request.
type SubjectRef struct {
	Type        SubjectType `json:"type"`
	ReferenceID string      `json:"reference_id"`
	Label       string      `json:"label,omitempty"`
}

// SubjectSummary is the backend's resolved view of a subject.
type SubjectSummary struct {
	SubjectKey  string      `json:"subject_key"`
	SubjectType SubjectType `json:"subject_type"`
	ReferenceID string      `json:"reference_id"`
	Label       string      `json:"label"`
	Color       string      `json:"color,omitempty"`
	CompanyIDs  []string    `json:"company_ids"`
}

// MetricSummary is one table/stat-card row per subject.
type MetricSummary struct {
	SubjectKey           string  `json:"subject_key"`
	ImpactScore          float64 `json:"impact_score"`
	TrendDelta           float64 `json:"trend_delta"`
	InnovationVelocity   float64 `json:"innovation_velocity"`
	NewsTotal            int     `json:"news_total"`
	NewsPositive         int     `json:"news_positive"`
	NewsNegative         int     `json:"news_negative"`
	NewsNeutral          int     `json:"news_neutral"`
	NewsAverageSentiment float64 `json:"news_average_sentiment"`
	PricingChanges       int     `json:"pricing_changes"`
	FeatureUpdates       int     `json:"feature_updates"`
	FundingEvents        int     `json:"funding_events"`
}

// ComparisonRequest is the POST /comparison payload.  Exactly one of
// DateFrom/DateTo (explicit range) or Lookback (day count from now) governs
// the window; when both are present the explicit range wins.
type ComparisonRequest struct {
	Subjects []SubjectRef `json:"subjects"`
	Period   Period       `json:"period"`
	Lookback int          `json:"lookback,omitempty"`
	DateFrom *time.Time   `json:"date_from,omitempty"`
	DateTo   *time.Time   `json:"date_to,omitempty"`
	Filters  FilterState  `json:"filters"`

	IncludeSeries         bool `json:"include_series"`
	IncludeComponents     bool `json:"include_components"`
	IncludeChangeLog      bool `json:"include_change_log"`
	IncludeKnowledgeGraph bool `json:"include_knowledge_graph"`

	ChangeLogLimit int `json:"change_log_limit,omitempty"`
	GraphLimit     int `json:"graph_limit,omitempty"`
}

// ComparisonResponse is the normalized POST /comparison result.
type ComparisonResponse struct {
	Subjects       []SubjectSummary         `json:"subjects"`
	Metrics        []MetricSummary          `json:"metrics"`
	Series         []Series                 `json:"series"`
	ChangeLog      map[string][]ChangeEvent `json:"change_log,omitempty"`
	KnowledgeGraph map[string][]GraphEdge   `json:"knowledge_graph,omitempty"`
	DateFrom       time.Time                `json:"date_from"`
	DateTo         time.Time                `json:"date_to"`
}

// ChangeLogPage is one cursor page of change events.  A nil NextCursor
// signals the final page.
type ChangeLogPage struct {
	Events     []ChangeEvent `json:"events"`
	NextCursor *string       `json:"next_cursor"`
	Total      int           `json:"total"`
}

// SnapshotSeries is the GET /analytics/snapshots/series result.
type SnapshotSeries struct {
	CompanyID string     `json:"company_id"`
	Period    Period     `json:"period"`
	Snapshots []Snapshot `json:"snapshots"`
}

// JobAccepted is the response of the async job trigger endpoints.
type JobAccepted struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

// ReportPreset is a named, persisted combination of companies and filters.
// The first company is implicitly the primary subject.
type ReportPreset struct {
	ID                  string                 `json:"id"`
	Name                string                 `json:"name"`
	Description         string                 `json:"description,omitempty"`
	Companies           []string               `json:"companies"`
	Filters             FilterState            `json:"filters"`
	VisualizationConfig map[string]interface{} `json:"visualization_config,omitempty"`
	IsFavorite          bool                   `json:"is_favorite"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// NotificationSettings mirrors the user's digest/notification preferences as
// returned by the backend; included in exports on request.
type NotificationSettings struct {
	DigestEnabled   bool     `json:"digest_enabled"`
	DigestFrequency string   `json:"digest_frequency,omitempty"`
	Channels        []string `json:"channels,omitempty"`
	QuietHours      string   `json:"quiet_hours,omitempty"`
}

// ExportBundleRequest asks the backend to assemble a server-side export
// bundle for the given companies and window.
type ExportBundleRequest struct {
	CompanyIDs []string   `json:"company_ids"`
	Period     Period     `json:"period"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
}

// ExportBundleResponse carries the backend's contribution to an export.
type ExportBundleResponse struct {
	Snapshots            map[string][]Snapshot `json:"snapshots"`
	NotificationSettings *NotificationSettings `json:"notification_settings,omitempty"`
}

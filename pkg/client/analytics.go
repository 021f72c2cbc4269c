package client

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"time"

	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// AnalyticsClient covers the comparison, snapshot, and graph endpoints.
type AnalyticsClient struct {
	client *Client
}

// Comparison requests a multi-subject comparison for the given window.
func (a *AnalyticsClient) Comparison(ctx context.Context, req *analytics.ComparisonRequest) (*analytics.ComparisonResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("comparison request is nil")
	}
	var resp analytics.ComparisonResponse
	if err := a.client.post(ctx, "/api/v1/analytics/comparison", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LatestSnapshot fetches the most recent snapshot for a company at the given
// granularity.  A 404 means the snapshot has not been computed yet; callers
// should detect it with IsNotFound and render an empty state rather than an
// error.
func (a *AnalyticsClient) LatestSnapshot(ctx context.Context, companyID string, period analytics.Period) (*analytics.Snapshot, error) {
	if companyID == "" {
		return nil, fmt.Errorf("companyID is required")
	}
	path := fmt.Sprintf("/api/v1/analytics/companies/%s/snapshots/latest?period=%s",
		url.PathEscape(companyID), url.QueryEscape(string(period)))
	var snap analytics.Snapshot
	if err := a.client.get(ctx, path, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SnapshotSeries fetches the snapshot history of a company over a window.
func (a *AnalyticsClient) SnapshotSeries(ctx context.Context, companyID string, period analytics.Period, from, to time.Time) (*analytics.SnapshotSeries, error) {
	if companyID == "" {
		return nil, fmt.Errorf("companyID is required")
	}
	q := url.Values{}
	q.Set("period", string(period))
	if !from.IsZero() {
		q.Set("date_from", from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		q.Set("date_to", to.Format(time.RFC3339))
	}
	path := fmt.Sprintf("/api/v1/analytics/companies/%s/snapshots/series?%s", url.PathEscape(companyID), q.Encode())
	var series analytics.SnapshotSeries
	if err := a.client.get(ctx, path, &series); err != nil {
		return nil, err
	}
	return &series, nil
}

// Graph fetches up to limit knowledge-graph edges for a company.  Like
// snapshots, a 404 means the graph has not been synced yet.
func (a *AnalyticsClient) Graph(ctx context.Context, companyID string, limit int) ([]analytics.GraphEdge, error) {
	if companyID == "" {
		return nil, fmt.Errorf("companyID is required")
	}
	path := fmt.Sprintf("/api/v1/analytics/companies/%s/graph", url.PathEscape(companyID))
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var edges []analytics.GraphEdge
	if err := a.client.get(ctx, path, &edges); err != nil {
		return nil, err
	}
	return edges, nil
}

// ExportBundle asks the backend for the snapshot data and notification
// settings that feed an export document.
func (a *AnalyticsClient) ExportBundle(ctx context.Context, req *analytics.ExportBundleRequest) (*analytics.ExportBundleResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("export bundle request is nil")
	}
	var resp analytics.ExportBundleResponse
	if err := a.client.post(ctx, "/api/v1/analytics/export", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return stderrors.As(err, &apiErr) && apiErr.IsNotFound()
}

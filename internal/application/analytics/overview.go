// Package analytics serves the per-company overview and the async job
// triggers against the analytics backend.
package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/competiscope/pkg/client"
	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// Backend is the slice of the SDK the overview needs; narrowed for testing.
type Backend interface {
	LatestSnapshot(ctx context.Context, companyID string, period analytics.Period) (*analytics.Snapshot, error)
	SnapshotSeries(ctx context.Context, companyID string, period analytics.Period, from, to time.Time) (*analytics.SnapshotSeries, error)
	Graph(ctx context.Context, companyID string, limit int) ([]analytics.GraphEdge, error)
}

// CompanyOverview aggregates the sub-resources of one company.  Any part
// the backend has not computed yet is simply nil or empty; the overview as
// a whole still renders.
type CompanyOverview struct {
	CompanyID string                    `json:"company_id"`
	Period    analytics.Period          `json:"period"`
	Snapshot  *analytics.Snapshot       `json:"snapshot,omitempty"`
	Series    *analytics.SnapshotSeries `json:"series,omitempty"`
	Graph     []analytics.GraphEdge     `json:"graph,omitempty"`
}

// OverviewService fetches company overviews.
type OverviewService struct {
	backend    Backend
	metrics    *prometheus.Metrics
	logger     logging.Logger
	graphLimit int
}

// NewOverviewService wires the overview fetcher.
func NewOverviewService(backend Backend, metrics *prometheus.Metrics, log logging.Logger, graphLimit int) *OverviewService {
	return &OverviewService{
		backend:    backend,
		metrics:    metrics,
		logger:     log.Named("overview"),
		graphLimit: graphLimit,
	}
}

// Overview fetches snapshot, series, and graph concurrently.  All three
// requests always run to completion; a 404 on any of them means "not
// computed yet" and leaves that part empty.  Any other failure is surfaced
// after all requests settle, alongside whatever data did arrive.
func (s *OverviewService) Overview(ctx context.Context, companyID string, period analytics.Period, from, to time.Time) (*CompanyOverview, error) {
	if companyID == "" {
		return nil, errors.InvalidParam("companyID is required")
	}
	if !period.Valid() {
		return nil, errors.Newf(errors.CodeInvalidParam, "invalid period %q", period)
	}

	overview := &CompanyOverview{CompanyID: companyID, Period: period}
	fetchErrs := make([]error, 3)

	var g errgroup.Group
	g.Go(func() error {
		start := time.Now()
		snap, err := s.backend.LatestSnapshot(ctx, companyID, period)
		s.metrics.ObserveBackend("latest_snapshot", time.Since(start))
		if err != nil {
			fetchErrs[0] = err
			return nil
		}
		overview.Snapshot = snap
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		series, err := s.backend.SnapshotSeries(ctx, companyID, period, from, to)
		s.metrics.ObserveBackend("snapshot_series", time.Since(start))
		if err != nil {
			fetchErrs[1] = err
			return nil
		}
		overview.Series = series
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		edges, err := s.backend.Graph(ctx, companyID, s.graphLimit)
		s.metrics.ObserveBackend("graph", time.Since(start))
		if err != nil {
			fetchErrs[2] = err
			return nil
		}
		overview.Graph = edges
		return nil
	})
	_ = g.Wait()

	for _, err := range fetchErrs {
		if err == nil || client.IsNotFound(err) {
			continue
		}
		return overview, errors.Wrap(err, errors.CodeBackendError, "company overview fetch failed")
	}
	return overview, nil
}

package analytics

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/competiscope/pkg/client"
	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

var errNotFound = &client.APIError{StatusCode: http.StatusNotFound, Message: "not computed"}

type fakeAnalyticsBackend struct {
	snapshot    *analytics.Snapshot
	snapshotErr error
	series      *analytics.SnapshotSeries
	seriesErr   error
	graph       []analytics.GraphEdge
	graphErr    error
}

func (b *fakeAnalyticsBackend) LatestSnapshot(context.Context, string, analytics.Period) (*analytics.Snapshot, error) {
	return b.snapshot, b.snapshotErr
}

func (b *fakeAnalyticsBackend) SnapshotSeries(context.Context, string, analytics.Period, time.Time, time.Time) (*analytics.SnapshotSeries, error) {
	return b.series, b.seriesErr
}

func (b *fakeAnalyticsBackend) Graph(context.Context, string, int) ([]analytics.GraphEdge, error) {
	return b.graph, b.graphErr
}

func newOverviewService(backend Backend) *OverviewService {
	return NewOverviewService(backend, prometheus.NewMetrics(), logging.NewNopLogger(), 50)
}

func TestOverview_AllPartsPresent(t *testing.T) {
	backend := &fakeAnalyticsBackend{
		snapshot: &analytics.Snapshot{CompanyID: "acme", ImpactScore: 7.5},
		series:   &analytics.SnapshotSeries{CompanyID: "acme", Period: analytics.PeriodDaily},
		graph:    []analytics.GraphEdge{{ID: "e-1"}},
	}
	svc := newOverviewService(backend)

	got, err := svc.Overview(context.Background(), "acme", analytics.PeriodDaily, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.NotNil(t, got.Snapshot)
	assert.Equal(t, 7.5, got.Snapshot.ImpactScore)
	assert.NotNil(t, got.Series)
	assert.Len(t, got.Graph, 1)
}

func TestOverview_NotFoundIsEmptyNotError(t *testing.T) {
	backend := &fakeAnalyticsBackend{
		snapshotErr: errNotFound,
		seriesErr:   errNotFound,
		graphErr:    errNotFound,
	}
	svc := newOverviewService(backend)

	got, err := svc.Overview(context.Background(), "acme", analytics.PeriodDaily, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Nil(t, got.Snapshot)
	assert.Nil(t, got.Series)
	assert.Empty(t, got.Graph)
}

func TestOverview_RealErrorSurfacedWithPartialData(t *testing.T) {
	backend := &fakeAnalyticsBackend{
		snapshot: &analytics.Snapshot{CompanyID: "acme"},
		series:   &analytics.SnapshotSeries{CompanyID: "acme"},
		graphErr: fmt.Errorf("backend exploded"),
	}
	svc := newOverviewService(backend)

	got, err := svc.Overview(context.Background(), "acme", analytics.PeriodDaily, time.Time{}, time.Time{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeBackendError))
	require.NotNil(t, got, "settled data still returned")
	assert.NotNil(t, got.Snapshot)
	assert.NotNil(t, got.Series)
}

func TestOverview_MixedNotFoundAndError(t *testing.T) {
	backend := &fakeAnalyticsBackend{
		snapshotErr: errNotFound,
		seriesErr:   fmt.Errorf("timeout"),
	}
	svc := newOverviewService(backend)

	_, err := svc.Overview(context.Background(), "acme", analytics.PeriodDaily, time.Time{}, time.Time{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeBackendError))
}

func TestOverview_Validation(t *testing.T) {
	svc := newOverviewService(&fakeAnalyticsBackend{})

	_, err := svc.Overview(context.Background(), "", analytics.PeriodDaily, time.Time{}, time.Time{})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = svc.Overview(context.Background(), "acme", "hourly", time.Time{}, time.Time{})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

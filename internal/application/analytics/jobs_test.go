package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	comparisonapp "github.com/turtacn/competiscope/internal/application/comparison"
	"github.com/turtacn/competiscope/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

type fakeJobsBackend struct {
	recomputeCalls int
	syncCalls      int
	err            error
}

func (b *fakeJobsBackend) Recompute(context.Context, []string, analytics.Period) (*analytics.JobAccepted, error) {
	b.recomputeCalls++
	if b.err != nil {
		return nil, b.err
	}
	return &analytics.JobAccepted{Status: "accepted", JobID: "job-rc"}, nil
}

func (b *fakeJobsBackend) SyncKnowledgeGraph(context.Context) (*analytics.JobAccepted, error) {
	b.syncCalls++
	if b.err != nil {
		return nil, b.err
	}
	return &analytics.JobAccepted{Status: "accepted", JobID: "job-gs"}, nil
}

type fakeRefresher struct {
	invalidated int
	refreshed   int
}

func (r *fakeRefresher) InvalidateCache(context.Context) { r.invalidated++ }

func (r *fakeRefresher) Refresh(context.Context) (comparisonapp.State, error) {
	r.refreshed++
	return comparisonapp.State{}, nil
}

func newJobService(backend JobsBackend, refresher Refresher) (*JobService, *[]time.Duration) {
	svc := NewJobService(backend, refresher, kafka.NewNopProducer(), logging.NewNopLogger(), 8*time.Second)

	var delays []time.Duration
	svc.schedule = func(d time.Duration, f func()) {
		delays = append(delays, d)
		f()
	}
	return svc, &delays
}

func TestTriggerRecompute(t *testing.T) {
	backend := &fakeJobsBackend{}
	refresher := &fakeRefresher{}
	svc, delays := newJobService(backend, refresher)

	job, err := svc.TriggerRecompute(context.Background(), []string{"acme"}, analytics.PeriodDaily)
	require.NoError(t, err)
	assert.Equal(t, "job-rc", job.JobID)
	assert.Equal(t, 1, backend.recomputeCalls)

	require.Len(t, *delays, 1)
	assert.Equal(t, 8*time.Second, (*delays)[0])
	assert.Equal(t, 1, refresher.invalidated)
	assert.Equal(t, 1, refresher.refreshed, "exactly one follow-up refresh, no polling loop")
}

func TestTriggerGraphSync(t *testing.T) {
	backend := &fakeJobsBackend{}
	refresher := &fakeRefresher{}
	svc, _ := newJobService(backend, refresher)

	job, err := svc.TriggerGraphSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "job-gs", job.JobID)
	assert.Equal(t, 1, backend.syncCalls)
	assert.Equal(t, 1, refresher.refreshed)
}

func TestTriggerFailureSchedulesNothing(t *testing.T) {
	backend := &fakeJobsBackend{err: fmt.Errorf("broker busy")}
	refresher := &fakeRefresher{}
	svc, delays := newJobService(backend, refresher)

	_, err := svc.TriggerRecompute(context.Background(), nil, analytics.PeriodDaily)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeJobTriggerFailed))
	assert.Empty(t, *delays)
	assert.Equal(t, 0, refresher.refreshed)
}

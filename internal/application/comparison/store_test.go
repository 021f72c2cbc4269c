package comparison

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/turtacn/competiscope/internal/domain/comparison"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

func storeWithSubjects(t *testing.T, ids ...string) *Store {
	t.Helper()
	refs := make([]analytics.SubjectRef, len(ids))
	for i, id := range ids {
		refs[i] = analytics.SubjectRef{Type: analytics.SubjectCompany, ReferenceID: id}
	}
	subjects, err := domain.Normalize(refs)
	require.NoError(t, err)

	s := NewStore(analytics.PeriodDaily, 30)
	s.SetSubjects(subjects)
	return s
}

func TestStore_SetSubjectsRepairsSelection(t *testing.T) {
	s := storeWithSubjects(t, "acme", "globex")

	snap := s.Snapshot()
	assert.Equal(t, "company:acme", snap.Selection.Left)
	assert.Equal(t, "company:globex", snap.Selection.Right)

	// Dropping the right subject re-anchors the selection.
	remaining := domain.Remove(snap.Subjects, "company:globex")
	snap = s.SetSubjects(remaining)
	assert.Equal(t, "company:acme", snap.Selection.Left)
	assert.Equal(t, "company:acme", snap.Selection.Right)
}

func TestStore_GenerationLastRequestWins(t *testing.T) {
	s := storeWithSubjects(t, "acme")

	gen1 := s.BeginFetch()
	gen2 := s.BeginFetch()
	require.Greater(t, gen2, gen1)

	newer := &analytics.ComparisonResponse{
		Metrics: []analytics.MetricSummary{{SubjectKey: "company:acme", ImpactScore: 9}},
	}
	require.True(t, s.ApplyResult(gen2, newer, nil))

	older := &analytics.ComparisonResponse{
		Metrics: []analytics.MetricSummary{{SubjectKey: "company:acme", ImpactScore: 1}},
	}
	assert.False(t, s.ApplyResult(gen1, older, nil), "stale result must be discarded")

	snap := s.Snapshot()
	require.NotNil(t, snap.Result)
	assert.Equal(t, 9.0, snap.Result.Metrics[0].ImpactScore)
	assert.Equal(t, StatusReady, snap.Status)
}

func TestStore_FailureKeepsPriorResult(t *testing.T) {
	s := storeWithSubjects(t, "acme")

	gen := s.BeginFetch()
	good := &analytics.ComparisonResponse{
		Metrics: []analytics.MetricSummary{{SubjectKey: "company:acme", ImpactScore: 5}},
	}
	require.True(t, s.ApplyResult(gen, good, nil))

	gen = s.BeginFetch()
	require.True(t, s.ApplyFailure(gen, fmt.Errorf("backend down")))

	snap := s.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "backend down", snap.LastError)
	require.NotNil(t, snap.Result, "last good result stays visible")
	assert.Equal(t, 5.0, snap.Result.Metrics[0].ImpactScore)
}

func TestStore_StaleFailureDiscarded(t *testing.T) {
	s := storeWithSubjects(t, "acme")

	gen1 := s.BeginFetch()
	gen2 := s.BeginFetch()
	require.True(t, s.ApplyResult(gen2, &analytics.ComparisonResponse{}, nil))

	assert.False(t, s.ApplyFailure(gen1, fmt.Errorf("slow failure")))
	assert.Equal(t, StatusReady, s.Snapshot().Status)
}

func TestStore_ApplyResultMergesSummaries(t *testing.T) {
	s := storeWithSubjects(t, "acme")

	gen := s.BeginFetch()
	resp := &analytics.ComparisonResponse{
		Subjects: []analytics.SubjectSummary{
			{SubjectKey: "company:acme", Label: "Acme Corp", CompanyIDs: []string{"acme"}},
		},
	}
	require.True(t, s.ApplyResult(gen, resp, nil))

	snap := s.Snapshot()
	assert.Equal(t, "Acme Corp", snap.Subjects[0].Label)
}

func TestStore_SetWindow(t *testing.T) {
	s := NewStore(analytics.PeriodDaily, 30)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	snap := s.SetWindow(analytics.PeriodWeekly, 0, &from, &to)

	assert.Equal(t, analytics.PeriodWeekly, snap.Period)
	assert.Equal(t, 30, snap.Lookback, "invalid lookback keeps previous value")
	require.NotNil(t, snap.DateFrom)
	assert.Equal(t, from, *snap.DateFrom)

	snap = s.SetWindow("hourly", 7, nil, nil)
	assert.Equal(t, analytics.PeriodWeekly, snap.Period, "invalid period keeps previous value")
	assert.Equal(t, 7, snap.Lookback)
	assert.Nil(t, snap.DateFrom)
}

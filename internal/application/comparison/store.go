package comparison

import (
	"sync"
	"time"

	domain "github.com/turtacn/competiscope/internal/domain/comparison"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// Status is the lifecycle phase of the comparison state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// State is one immutable snapshot of the comparison.  Fetch results carry
// the generation they were requested under; only the result of the newest
// generation may be applied, so an old slow response can never overwrite a
// newer one.
type State struct {
	Generation uint64                        `json:"generation"`
	Subjects   []domain.Subject              `json:"subjects"`
	Selection  domain.Selection              `json:"selection"`
	Filters    analytics.FilterState         `json:"filters"`
	Period     analytics.Period              `json:"period"`
	Lookback   int                           `json:"lookback"`
	DateFrom   *time.Time                    `json:"date_from,omitempty"`
	DateTo     *time.Time                    `json:"date_to,omitempty"`
	Status     Status                        `json:"status"`
	Result     *analytics.ComparisonResponse `json:"result,omitempty"`
	Chart      *AlignedChart                 `json:"chart,omitempty"`
	LastError  string                        `json:"last_error,omitempty"`
	UpdatedAt  time.Time                     `json:"updated_at"`
}

// Store holds the current comparison state behind a mutex and hands out
// copies.  All mutation goes through its methods.
type Store struct {
	mu    sync.RWMutex
	state State
	now   func() time.Time
}

// NewStore builds a store with sensible initial defaults.
func NewStore(period analytics.Period, lookback int) *Store {
	return &Store{
		state: State{
			Period:   period,
			Lookback: lookback,
			Status:   StatusIdle,
		},
		now: time.Now,
	}
}

// Snapshot returns a copy of the current state.  Slices are shared but
// treated as immutable by convention: every mutation builds fresh slices.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetSubjects replaces the subject list, repairing the A/B selection onto
// the new list.
func (s *Store) SetSubjects(subjects []domain.Subject) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Subjects = subjects
	s.state.Selection = domain.Repair(s.state.Selection, subjects)
	s.state.UpdatedAt = s.now()
	return s.state
}

// SetFilters replaces the filter state.
func (s *Store) SetFilters(filters analytics.FilterState) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Filters = domain.NormalizeFilters(filters)
	s.state.UpdatedAt = s.now()
	return s.state
}

// SetWindow replaces the time window.  A non-nil explicit range wins over
// lookback when the fetch request is built.
func (s *Store) SetWindow(period analytics.Period, lookback int, from, to *time.Time) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if period.Valid() {
		s.state.Period = period
	}
	if lookback > 0 {
		s.state.Lookback = lookback
	}
	s.state.DateFrom = from
	s.state.DateTo = to
	s.state.UpdatedAt = s.now()
	return s.state
}

// Select applies an explicit A/B choice.
func (s *Store) Select(side, key string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Selection = domain.Select(s.state.Selection, s.state.Subjects, side, key)
	s.state.UpdatedAt = s.now()
	return s.state
}

// BeginFetch bumps the generation, marks the state loading, and returns the
// new generation token.  Prior results stay visible while loading.
func (s *Store) BeginFetch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Generation++
	s.state.Status = StatusLoading
	s.state.UpdatedAt = s.now()
	return s.state.Generation
}

// ApplyResult installs a fetch result if gen is still the newest
// generation.  It returns false when the result is stale and was discarded.
func (s *Store) ApplyResult(gen uint64, result *analytics.ComparisonResponse, chart *AlignedChart) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.state.Generation {
		return false
	}
	s.state.Result = result
	s.state.Chart = chart
	s.state.Status = StatusReady
	s.state.LastError = ""
	if result != nil {
		s.state.Subjects = domain.ApplySummaries(s.state.Subjects, result.Subjects)
		s.state.Selection = domain.Repair(s.state.Selection, s.state.Subjects)
	}
	s.state.UpdatedAt = s.now()
	return true
}

// ApplyFailure records a fetch failure if gen is still current.  The prior
// result is kept so the last good data stays on screen.
func (s *Store) ApplyFailure(gen uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.state.Generation {
		return false
	}
	s.state.Status = StatusFailed
	if err != nil {
		s.state.LastError = err.Error()
	}
	s.state.UpdatedAt = s.now()
	return true
}

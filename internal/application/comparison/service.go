// Package comparison orchestrates multi-subject comparison fetches: it
// builds backend requests from the current state, memoizes responses,
// aligns series for charting, and enforces last-request-wins semantics on
// concurrent fetches.
package comparison

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/turtacn/competiscope/internal/config"
	domain "github.com/turtacn/competiscope/internal/domain/comparison"
	"github.com/turtacn/competiscope/internal/infrastructure/database/redis"
	"github.com/turtacn/competiscope/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/competiscope/pkg/client"
	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// Backend is the slice of the SDK the service needs; narrowed for testing.
type Backend interface {
	Comparison(ctx context.Context, req *analytics.ComparisonRequest) (*analytics.ComparisonResponse, error)
}

// Service owns the comparison state and its backend synchronization.
type Service struct {
	backend  Backend
	cache    redis.Cache
	store    *Store
	producer kafka.Producer
	metrics  *prometheus.Metrics
	logger   logging.Logger
	cfg      config.ComparisonConfig
}

// NewService wires the comparison orchestrator.
func NewService(backend Backend, cache redis.Cache, producer kafka.Producer, metrics *prometheus.Metrics, log logging.Logger, cfg config.ComparisonConfig) *Service {
	return &Service{
		backend:  backend,
		cache:    cache,
		store:    NewStore(analytics.Period(cfg.DefaultPeriod), cfg.DefaultLookback),
		producer: producer,
		metrics:  metrics,
		logger:   log.Named("comparison"),
		cfg:      cfg,
	}
}

// Store exposes the state store, mainly for the change-log and export
// services that read comparison state.
func (s *Service) Store() *Store {
	return s.store
}

// State returns the current state snapshot.
func (s *Service) State() State {
	return s.store.Snapshot()
}

// SetSubjects replaces the subject list and refetches.
func (s *Service) SetSubjects(ctx context.Context, refs []analytics.SubjectRef) (State, error) {
	subjects, err := domain.Normalize(refs)
	if err != nil {
		return s.store.Snapshot(), err
	}
	s.store.SetSubjects(subjects)
	return s.Refresh(ctx)
}

// Configure replaces subjects, window, and filters in one step, with a
// single refetch at the end.
func (s *Service) Configure(ctx context.Context, req *analytics.ComparisonRequest) (State, error) {
	subjects, err := domain.Normalize(req.Subjects)
	if err != nil {
		return s.store.Snapshot(), err
	}
	s.store.SetSubjects(subjects)
	s.store.SetWindow(req.Period, req.Lookback, req.DateFrom, req.DateTo)
	s.store.SetFilters(req.Filters)
	return s.Refresh(ctx)
}

// AddSubject appends one subject and refetches.  Adding a subject already
// present fails without touching the state.
func (s *Service) AddSubject(ctx context.Context, ref analytics.SubjectRef) (State, error) {
	snap := s.store.Snapshot()
	subjects, err := domain.Add(snap.Subjects, ref)
	if err != nil {
		return snap, err
	}
	s.store.SetSubjects(subjects)
	return s.Refresh(ctx)
}

// RemoveSubject drops one subject and refetches.
func (s *Service) RemoveSubject(ctx context.Context, key string) (State, error) {
	snap := s.store.Snapshot()
	s.store.SetSubjects(domain.Remove(snap.Subjects, key))
	return s.Refresh(ctx)
}

// SetFilters replaces the filter state and refetches.
func (s *Service) SetFilters(ctx context.Context, filters analytics.FilterState) (State, error) {
	s.store.SetFilters(filters)
	return s.Refresh(ctx)
}

// SetWindow replaces the time window and refetches.
func (s *Service) SetWindow(ctx context.Context, period analytics.Period, lookback int, from, to *time.Time) (State, error) {
	s.store.SetWindow(period, lookback, from, to)
	return s.Refresh(ctx)
}

// Select applies an explicit A/B choice.  Selection is local state; no
// backend fetch is needed.
func (s *Service) Select(side, key string) State {
	return s.store.Select(side, key)
}

// Refresh fetches the comparison for the current state under a fresh
// generation.  A result that comes back after a newer fetch has started is
// discarded; a failure keeps the previous result visible.
func (s *Service) Refresh(ctx context.Context) (State, error) {
	snap := s.store.Snapshot()
	gen := s.store.BeginFetch()

	if len(snap.Subjects) == 0 {
		s.store.ApplyResult(gen, nil, nil)
		return s.store.Snapshot(), nil
	}

	req := s.buildRequest(snap)
	resp, err := s.fetchCached(ctx, req)
	if err != nil {
		if client.IsNotFound(err) {
			// Analytics not computed yet: an empty result, not a failure.
			if s.store.ApplyResult(gen, &analytics.ComparisonResponse{}, nil) {
				s.metrics.ComparisonFetches.WithLabelValues("applied").Inc()
			}
			return s.store.Snapshot(), nil
		}
		s.metrics.ComparisonFetches.WithLabelValues("failed").Inc()
		s.store.ApplyFailure(gen, err)
		return s.store.Snapshot(), errors.Wrap(err, errors.CodeBackendError, "comparison fetch failed")
	}

	chart := AlignSeries(resp.Series)
	if !s.store.ApplyResult(gen, resp, chart) {
		s.metrics.StaleDiscards.Inc()
		s.metrics.ComparisonFetches.WithLabelValues("discarded").Inc()
		s.logger.Debug("Discarded stale comparison result",
			logging.Int64("generation", int64(gen)),
		)
		return s.store.Snapshot(), nil
	}

	s.metrics.ComparisonFetches.WithLabelValues("applied").Inc()
	s.audit(ctx, len(snap.Subjects), req)
	return s.store.Snapshot(), nil
}

// InvalidateCache drops memoized comparison responses, forcing the next
// refresh to hit the backend.  Used after recompute jobs.
func (s *Service) InvalidateCache(ctx context.Context) {
	if _, err := s.cache.DeleteByPrefix(ctx, "comparison:"); err != nil {
		s.logger.Warn("Failed to invalidate comparison cache", logging.Err(err))
	}
}

// buildRequest derives the backend request from a state snapshot.  An
// explicit date range wins over the lookback window; sub-resources are
// always requested with bounded limits so one round trip carries the whole
// view.
func (s *Service) buildRequest(snap State) *analytics.ComparisonRequest {
	refs := make([]analytics.SubjectRef, len(snap.Subjects))
	for i, sub := range snap.Subjects {
		refs[i] = analytics.SubjectRef{
			Type:        sub.Type,
			ReferenceID: sub.ReferenceID,
			Label:       sub.Label,
		}
	}

	req := &analytics.ComparisonRequest{
		Subjects: refs,
		Period:   snap.Period,
		Filters:  snap.Filters,

		IncludeSeries:         true,
		IncludeComponents:     true,
		IncludeChangeLog:      true,
		IncludeKnowledgeGraph: true,

		ChangeLogLimit: s.cfg.ChangeLogLimit,
		GraphLimit:     s.cfg.GraphLimit,
	}

	if snap.DateFrom != nil && snap.DateTo != nil {
		req.DateFrom = snap.DateFrom
		req.DateTo = snap.DateTo
	} else {
		req.Lookback = snap.Lookback
	}
	return req
}

// fetchCached memoizes comparison responses keyed by request content, so
// identical windows served to several clients hit the backend once.
func (s *Service) fetchCached(ctx context.Context, req *analytics.ComparisonRequest) (*analytics.ComparisonResponse, error) {
	key := "comparison:" + requestKey(req)

	var resp analytics.ComparisonResponse
	err := s.cache.GetOrSet(ctx, key, &resp, s.cfg.CacheTTL, func(ctx context.Context) (interface{}, error) {
		start := time.Now()
		result, err := s.backend.Comparison(ctx, req)
		s.metrics.ObserveBackend("comparison", time.Since(start))
		if err != nil {
			return nil, err
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Service) audit(ctx context.Context, subjectCount int, req *analytics.ComparisonRequest) {
	event := kafka.NewAuditEvent(kafka.EventComparisonFetched, map[string]interface{}{
		"subjects": subjectCount,
		"period":   string(req.Period),
	})
	if err := s.producer.Publish(ctx, event); err != nil {
		s.logger.Debug("Audit publish failed", logging.Err(err))
	}
}

// requestKey hashes the canonical request JSON into a stable cache key.
func requestKey(req *analytics.ComparisonRequest) string {
	data, err := json.Marshal(req)
	if err != nil {
		return "unhashable"
	}
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

package analytics

import (
	"context"
	"time"

	comparisonapp "github.com/turtacn/competiscope/internal/application/comparison"
	"github.com/turtacn/competiscope/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// JobsBackend is the slice of the SDK the job triggers need.
type JobsBackend interface {
	Recompute(ctx context.Context, companyIDs []string, period analytics.Period) (*analytics.JobAccepted, error)
	SyncKnowledgeGraph(ctx context.Context) (*analytics.JobAccepted, error)
}

// Refresher is the comparison surface the post-job follow-up drives.
type Refresher interface {
	InvalidateCache(ctx context.Context)
	Refresh(ctx context.Context) (comparisonapp.State, error)
}

// JobService triggers backend recompute and graph-sync jobs.  The backend
// only acknowledges a trigger; there is no completion signal.  After a fixed
// delay the service makes one best-effort refresh of the comparison state,
// with no retry and no backoff.
type JobService struct {
	backend     JobsBackend
	comparisons Refresher
	producer    kafka.Producer
	logger      logging.Logger
	pollDelay   time.Duration

	// schedule is time.AfterFunc unless a test swaps it out.
	schedule func(d time.Duration, f func())
}

// NewJobService wires the job triggers.
func NewJobService(backend JobsBackend, comparisons Refresher, producer kafka.Producer, log logging.Logger, pollDelay time.Duration) *JobService {
	return &JobService{
		backend:     backend,
		comparisons: comparisons,
		producer:    producer,
		logger:      log.Named("jobs"),
		pollDelay:   pollDelay,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// TriggerRecompute asks the backend to recompute analytics for the given
// companies (all when empty) and schedules the follow-up refresh.
func (s *JobService) TriggerRecompute(ctx context.Context, companyIDs []string, period analytics.Period) (*analytics.JobAccepted, error) {
	job, err := s.backend.Recompute(ctx, companyIDs, period)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeJobTriggerFailed, "recompute trigger failed")
	}

	s.publish(ctx, kafka.EventRecomputeRequested, map[string]interface{}{
		"job_id":    job.JobID,
		"companies": len(companyIDs),
	})
	s.scheduleRefresh(job.JobID)
	return job, nil
}

// TriggerGraphSync asks the backend to rebuild the knowledge graph and
// schedules the follow-up refresh.
func (s *JobService) TriggerGraphSync(ctx context.Context) (*analytics.JobAccepted, error) {
	job, err := s.backend.SyncKnowledgeGraph(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeJobTriggerFailed, "graph sync trigger failed")
	}

	s.publish(ctx, kafka.EventGraphSyncRequested, map[string]interface{}{
		"job_id": job.JobID,
	})
	s.scheduleRefresh(job.JobID)
	return job, nil
}

// scheduleRefresh runs one cache invalidation plus comparison refresh after
// the poll delay.  The refresh is detached from the triggering request and
// its failure is only logged.
func (s *JobService) scheduleRefresh(jobID string) {
	s.schedule(s.pollDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s.comparisons.InvalidateCache(ctx)
		if _, err := s.comparisons.Refresh(ctx); err != nil {
			s.logger.Warn("Post-job refresh failed",
				logging.String("job_id", jobID),
				logging.Err(err),
			)
		}
	})
}

func (s *JobService) publish(ctx context.Context, eventType string, payload map[string]interface{}) {
	if err := s.producer.Publish(ctx, kafka.NewAuditEvent(eventType, payload)); err != nil {
		s.logger.Debug("Audit publish failed", logging.Err(err))
	}
}

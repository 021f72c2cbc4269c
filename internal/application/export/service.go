package export

import (
	"context"
	"fmt"
	"time"

	comparisonapp "github.com/turtacn/competiscope/internal/application/comparison"
	domain "github.com/turtacn/competiscope/internal/domain/comparison"
	"github.com/turtacn/competiscope/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/turtacn/competiscope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/competiscope/internal/infrastructure/storage/minio"
	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// StateProvider yields a read-only snapshot of the current comparison.
type StateProvider interface {
	State() comparisonapp.State
}

// BundleBackend is the slice of the SDK that assembles server-side export
// data such as notification settings.
type BundleBackend interface {
	ExportBundle(ctx context.Context, req *analytics.ExportBundleRequest) (*analytics.ExportBundleResponse, error)
}

// PresetLister supplies saved presets for inclusion in an export.
type PresetLister interface {
	List(ctx context.Context, favoritesOnly bool) ([]*analytics.ReportPreset, error)
}

// Request selects the format and optional extras of one export.
type Request struct {
	Format                      Format
	IncludeNotificationSettings bool
	IncludePresets              bool
}

// Result is a rendered export document, uploaded when artifact storage is
// configured.
type Result struct {
	Format      Format
	Filename    string
	ContentType string
	Data        []byte
	Artifact    *minio.Artifact
}

// Service renders comparison exports.
type Service struct {
	comparisons StateProvider
	backend     BundleBackend
	presets     PresetLister
	artifacts   minio.ArtifactStore
	producer    kafka.Producer
	metrics     *prommetrics.Metrics
	logger      logging.Logger

	now func() time.Time
}

// NewService wires the export service.  The artifact store may be nil, in
// which case results are returned inline only.
func NewService(
	comparisons StateProvider,
	backend BundleBackend,
	presets PresetLister,
	artifacts minio.ArtifactStore,
	producer kafka.Producer,
	metrics *prommetrics.Metrics,
	log logging.Logger,
) *Service {
	return &Service{
		comparisons: comparisons,
		backend:     backend,
		presets:     presets,
		artifacts:   artifacts,
		producer:    producer,
		metrics:     metrics,
		logger:      log.Named("export"),
		now:         time.Now,
	}
}

// Export renders the current comparison in the requested format.  The
// comparison state is read, never mutated.  Extras that fail to load are
// skipped with a warning rather than failing the whole export.
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	state := s.comparisons.State()

	payload, err := BuildPayload(state, s.now())
	if err != nil {
		return nil, err
	}

	if req.IncludeNotificationSettings {
		s.attachBundle(ctx, state, payload)
	}
	if req.IncludePresets && s.presets != nil {
		presets, err := s.presets.List(ctx, false)
		if err != nil {
			s.logger.Warn("Skipping presets in export", logging.Err(err))
		} else {
			payload.Presets = presets
		}
	}

	var data []byte
	switch req.Format {
	case FormatJSON:
		data, err = RenderJSON(payload)
	case FormatCSV:
		data, err = RenderCSV(payload)
	case FormatHTML:
		data, err = RenderHTML(payload)
	default:
		return nil, errors.Newf(errors.CodeFormatUnsupported, "unsupported export format %q", req.Format)
	}
	if err != nil {
		return nil, err
	}
	s.metrics.ExportRenders.WithLabelValues(string(req.Format)).Inc()

	result := &Result{
		Format:      req.Format,
		Filename:    fmt.Sprintf("comparison-%s.%s", payload.GeneratedAt.Format("20060102-150405"), req.Format),
		ContentType: req.Format.ContentType(),
		Data:        data,
	}

	if s.artifacts != nil {
		artifact, err := s.artifacts.Put(ctx, result.Filename, result.ContentType, data)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeExportUploadFailed, "failed to upload export artifact")
		}
		result.Artifact = artifact
	}

	s.audit(ctx, req.Format, len(payload.Rows), len(data))
	return result, nil
}

// attachBundle pulls the backend's export bundle for notification settings.
func (s *Service) attachBundle(ctx context.Context, state comparisonapp.State, payload *Payload) {
	if s.backend == nil {
		return
	}
	bundle, err := s.backend.ExportBundle(ctx, &analytics.ExportBundleRequest{
		CompanyIDs: domain.CompanyIDs(state.Subjects),
		Period:     state.Period,
		DateFrom:   &payload.DateFrom,
		DateTo:     &payload.DateTo,
	})
	if err != nil {
		s.logger.Warn("Skipping notification settings in export", logging.Err(err))
		return
	}
	payload.NotificationSettings = bundle.NotificationSettings
}

func (s *Service) audit(ctx context.Context, format Format, subjects, size int) {
	event := kafka.NewAuditEvent(kafka.EventExportRendered, map[string]interface{}{
		"format":   string(format),
		"subjects": subjects,
		"bytes":    size,
	})
	if err := s.producer.Publish(ctx, event); err != nil {
		s.logger.Debug("Audit publish failed", logging.Err(err))
	}
}

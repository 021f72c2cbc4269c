// Package preset manages saved report presets and their application to the
// comparison view.
package preset

import (
	"context"

	"github.com/turtacn/competiscope/internal/domain/comparison"
	"github.com/turtacn/competiscope/internal/domain/preset"
	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// Service exposes preset CRUD plus the application of a preset to a
// comparison subject list.
type Service struct {
	repo   preset.Repository
	logger logging.Logger
}

// NewService wires the preset service.
func NewService(repo preset.Repository, log logging.Logger) *Service {
	return &Service{repo: repo, logger: log.Named("preset")}
}

// Create validates and persists a new preset.
func (s *Service) Create(ctx context.Context, p *analytics.ReportPreset) (*analytics.ReportPreset, error) {
	if err := preset.Validate(p); err != nil {
		return nil, err
	}
	p.Filters = normalizedFilters(p.Filters)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Created report preset",
		logging.String("id", p.ID),
		logging.String("name", p.Name),
	)
	return p, nil
}

// Get returns one preset by id.
func (s *Service) Get(ctx context.Context, id string) (*analytics.ReportPreset, error) {
	if id == "" {
		return nil, errors.InvalidParam("preset id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// List returns all presets, favorites first.
func (s *Service) List(ctx context.Context, favoritesOnly bool) ([]*analytics.ReportPreset, error) {
	return s.repo.List(ctx, favoritesOnly)
}

// Update validates and persists changes to an existing preset.
func (s *Service) Update(ctx context.Context, p *analytics.ReportPreset) (*analytics.ReportPreset, error) {
	if p == nil || p.ID == "" {
		return nil, errors.InvalidParam("preset id is required")
	}
	if err := preset.Validate(p); err != nil {
		return nil, err
	}
	p.Filters = normalizedFilters(p.Filters)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a preset.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.InvalidParam("preset id is required")
	}
	return s.repo.Delete(ctx, id)
}

// SetFavorite toggles the favorite flag.
func (s *Service) SetFavorite(ctx context.Context, id string, favorite bool) error {
	if id == "" {
		return errors.InvalidParam("preset id is required")
	}
	return s.repo.SetFavorite(ctx, id, favorite)
}

// Apply resolves a preset into the subject references and filters a
// comparison should adopt.  The preset's companies become individual
// company subjects, first company first, so the primary subject lands in
// the A slot.
func (s *Service) Apply(ctx context.Context, id string) ([]analytics.SubjectRef, analytics.FilterState, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, analytics.FilterState{}, err
	}

	refs := make([]analytics.SubjectRef, len(p.Companies))
	for i, companyID := range p.Companies {
		refs[i] = analytics.SubjectRef{
			Type:        analytics.SubjectCompany,
			ReferenceID: companyID,
		}
	}
	return refs, p.Filters, nil
}

// normalizedFilters canonicalizes filters before storage so applying a
// preset always yields the same comparison filter state.
func normalizedFilters(f analytics.FilterState) analytics.FilterState {
	return comparison.NormalizeFilters(f)
}

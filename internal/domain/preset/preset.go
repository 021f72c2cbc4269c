// Package preset holds the report preset domain rules and repository
// contract.  A preset names a saved set of companies plus filters; the first
// company in the list is the primary subject when the preset is applied to a
// comparison.
package preset

import (
	"context"
	"strings"

	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

const (
	maxNameLength      = 120
	maxCompanies       = 10
	maxDescriptionSize = 2000
)

// Validate checks a preset before it is persisted.
func Validate(p *analytics.ReportPreset) error {
	if p == nil {
		return errors.InvalidParam("preset is required")
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return errors.New(errors.CodePresetInvalid, "preset name is required")
	}
	if len(name) > maxNameLength {
		return errors.Newf(errors.CodePresetInvalid, "preset name exceeds %d characters", maxNameLength)
	}
	if len(p.Description) > maxDescriptionSize {
		return errors.Newf(errors.CodePresetInvalid, "preset description exceeds %d characters", maxDescriptionSize)
	}
	if len(p.Companies) == 0 {
		return errors.New(errors.CodePresetInvalid, "preset needs at least one company")
	}
	if len(p.Companies) > maxCompanies {
		return errors.Newf(errors.CodePresetInvalid, "preset exceeds %d companies", maxCompanies)
	}

	seen := make(map[string]struct{}, len(p.Companies))
	for _, id := range p.Companies {
		if strings.TrimSpace(id) == "" {
			return errors.New(errors.CodePresetInvalid, "preset contains an empty company id")
		}
		if _, dup := seen[id]; dup {
			return errors.Newf(errors.CodePresetInvalid, "preset lists company %q twice", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// PrimaryCompany returns the implicit primary subject of a preset.
func PrimaryCompany(p *analytics.ReportPreset) string {
	if p == nil || len(p.Companies) == 0 {
		return ""
	}
	return p.Companies[0]
}

// Repository is the persistence contract for report presets.
type Repository interface {
	Create(ctx context.Context, p *analytics.ReportPreset) error
	GetByID(ctx context.Context, id string) (*analytics.ReportPreset, error)
	List(ctx context.Context, favoritesOnly bool) ([]*analytics.ReportPreset, error)
	Update(ctx context.Context, p *analytics.ReportPreset) error
	Delete(ctx context.Context, id string) error
	SetFavorite(ctx context.Context, id string, favorite bool) error
}

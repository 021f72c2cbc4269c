package preset

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// memRepo is an in-memory preset repository.
type memRepo struct {
	presets map[string]*analytics.ReportPreset
	nextID  int
}

func newMemRepo() *memRepo {
	return &memRepo{presets: map[string]*analytics.ReportPreset{}}
}

func (r *memRepo) Create(_ context.Context, p *analytics.ReportPreset) error {
	if p.ID == "" {
		r.nextID++
		p.ID = string(rune('a' + r.nextID))
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	clone := *p
	r.presets[p.ID] = &clone
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*analytics.ReportPreset, error) {
	p, ok := r.presets[id]
	if !ok {
		return nil, errors.Newf(errors.CodePresetNotFound, "preset %s not found", id)
	}
	clone := *p
	return &clone, nil
}

func (r *memRepo) List(_ context.Context, favoritesOnly bool) ([]*analytics.ReportPreset, error) {
	var out []*analytics.ReportPreset
	for _, p := range r.presets {
		if favoritesOnly && !p.IsFavorite {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memRepo) Update(_ context.Context, p *analytics.ReportPreset) error {
	if _, ok := r.presets[p.ID]; !ok {
		return errors.Newf(errors.CodePresetNotFound, "preset %s not found", p.ID)
	}
	p.UpdatedAt = time.Now()
	clone := *p
	r.presets[p.ID] = &clone
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.presets[id]; !ok {
		return errors.Newf(errors.CodePresetNotFound, "preset %s not found", id)
	}
	delete(r.presets, id)
	return nil
}

func (r *memRepo) SetFavorite(_ context.Context, id string, favorite bool) error {
	p, ok := r.presets[id]
	if !ok {
		return errors.Newf(errors.CodePresetNotFound, "preset %s not found", id)
	}
	p.IsFavorite = favorite
	return nil
}

func newService() (*Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, logging.NewNopLogger()), repo
}

func TestCreate_ValidatesAndNormalizes(t *testing.T) {
	svc, _ := newService()

	created, err := svc.Create(context.Background(), &analytics.ReportPreset{
		Name:      "Rivals",
		Companies: []string{"acme", "globex"},
		Filters:   analytics.FilterState{SourceTypes: []string{"pricing", "news", "pricing"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"news", "pricing"}, created.Filters.SourceTypes)
}

func TestCreate_Invalid(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Create(context.Background(), &analytics.ReportPreset{Name: "x"})
	assert.True(t, errors.IsCode(err, errors.CodePresetInvalid))
}

func TestUpdate_RequiresID(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Update(context.Background(), &analytics.ReportPreset{
		Name: "x", Companies: []string{"acme"},
	})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestApply_ResolvesSubjectsInOrder(t *testing.T) {
	svc, _ := newService()

	created, err := svc.Create(context.Background(), &analytics.ReportPreset{
		Name:      "Rivals",
		Companies: []string{"acme", "globex", "initech"},
		Filters:   analytics.FilterState{Topics: []string{"ai"}},
	})
	require.NoError(t, err)

	refs, filters, err := svc.Apply(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, "acme", refs[0].ReferenceID, "primary company leads")
	assert.Equal(t, analytics.SubjectCompany, refs[0].Type)
	assert.Equal(t, []string{"ai"}, filters.Topics)
}

func TestApply_NotFound(t *testing.T) {
	svc, _ := newService()
	_, _, err := svc.Apply(context.Background(), "missing")
	assert.True(t, errors.IsCode(err, errors.CodePresetNotFound))
}

func TestDeleteAndFavorite(t *testing.T) {
	svc, repo := newService()

	created, err := svc.Create(context.Background(), &analytics.ReportPreset{
		Name: "Rivals", Companies: []string{"acme"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetFavorite(context.Background(), created.ID, true))
	favs, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, favs, 1)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Empty(t, repo.presets)

	err = svc.Delete(context.Background(), created.ID)
	assert.True(t, errors.IsCode(err, errors.CodePresetNotFound))
}

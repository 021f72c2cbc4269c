// Package repositories contains the pgx-backed persistence implementations.
package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/competiscope/internal/domain/preset"
	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

type presetRepo struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewPresetRepo builds the PostgreSQL report-preset repository.
func NewPresetRepo(pool *pgxpool.Pool, log logging.Logger) preset.Repository {
	return &presetRepo{pool: pool, log: log}
}

func (r *presetRepo) Create(ctx context.Context, p *analytics.ReportPreset) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	filters, err := json.Marshal(p.Filters)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to marshal preset filters")
	}
	vizConfig, err := json.Marshal(p.VisualizationConfig)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to marshal visualization config")
	}

	query := `
		INSERT INTO report_presets (
			id, name, description, companies, filters, visualization_config, is_favorite
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err = r.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.Description, p.Companies, filters, vizConfig, p.IsFavorite,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to create preset")
	}
	return nil
}

func (r *presetRepo) GetByID(ctx context.Context, id string) (*analytics.ReportPreset, error) {
	query := `
		SELECT id, name, description, companies, filters, visualization_config,
		       is_favorite, created_at, updated_at
		FROM report_presets
		WHERE id = $1
	`
	p, err := scanPreset(r.pool.QueryRow(ctx, query, id))
	if isNoRows(err) {
		return nil, errors.Newf(errors.CodePresetNotFound, "preset %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to get preset")
	}
	return p, nil
}

func (r *presetRepo) List(ctx context.Context, favoritesOnly bool) ([]*analytics.ReportPreset, error) {
	query := `
		SELECT id, name, description, companies, filters, visualization_config,
		       is_favorite, created_at, updated_at
		FROM report_presets
	`
	if favoritesOnly {
		query += ` WHERE is_favorite`
	}
	query += ` ORDER BY is_favorite DESC, updated_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to list presets")
	}
	defer rows.Close()

	var presets []*analytics.ReportPreset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan preset")
		}
		presets = append(presets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to iterate presets")
	}
	return presets, nil
}

func (r *presetRepo) Update(ctx context.Context, p *analytics.ReportPreset) error {
	filters, err := json.Marshal(p.Filters)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to marshal preset filters")
	}
	vizConfig, err := json.Marshal(p.VisualizationConfig)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to marshal visualization config")
	}

	query := `
		UPDATE report_presets
		SET name = $1, description = $2, companies = $3, filters = $4,
		    visualization_config = $5, is_favorite = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`
	err = r.pool.QueryRow(ctx, query,
		p.Name, p.Description, p.Companies, filters, vizConfig, p.IsFavorite, p.ID,
	).Scan(&p.UpdatedAt)
	if isNoRows(err) {
		return errors.Newf(errors.CodePresetNotFound, "preset %s not found", p.ID)
	}
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to update preset")
	}
	return nil
}

func (r *presetRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM report_presets WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to delete preset")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.CodePresetNotFound, "preset %s not found", id)
	}
	return nil
}

func (r *presetRepo) SetFavorite(ctx context.Context, id string, favorite bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE report_presets SET is_favorite = $1, updated_at = NOW() WHERE id = $2`, favorite, id)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to set favorite")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.CodePresetNotFound, "preset %s not found", id)
	}
	return nil
}

// isNoRows matches pgx.ErrNoRows through any wrapping the driver or scan
// helpers add.
func isNoRows(err error) bool {
	return stderrors.Is(err, pgx.ErrNoRows)
}

func scanPreset(row pgx.Row) (*analytics.ReportPreset, error) {
	var (
		p         analytics.ReportPreset
		filters   []byte
		vizConfig []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Companies, &filters, &vizConfig,
		&p.IsFavorite, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(filters) > 0 {
		if err := json.Unmarshal(filters, &p.Filters); err != nil {
			return nil, err
		}
	}
	if len(vizConfig) > 0 {
		if err := json.Unmarshal(vizConfig, &p.VisualizationConfig); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

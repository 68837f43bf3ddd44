package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/recopesa/intake-backend/internal/domain"
	"github.com/recopesa/intake-backend/internal/repository"
)

// system_config holds exactly one row; Get creates it with a zero surcharge
// the first time it is read.
type configRepository struct {
	db *DB
}

func NewConfigRepository(db *DB) repository.ConfigRepository {
	return &configRepository{db: db}
}

func (r *configRepository) Get(ctx context.Context) (*domain.SystemConfig, error) {
	var cfg domain.SystemConfig
	err := sqlx.GetContext(ctx, r.db, &cfg,
		`SELECT id, extra_percentage, updated_at FROM system_config LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return r.insertDefault(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get system config: %w", err)
	}
	return &cfg, nil
}

func (r *configRepository) insertDefault(ctx context.Context) (*domain.SystemConfig, error) {
	cfg := domain.SystemConfig{
		ID:              "default",
		ExtraPercentage: 0,
		UpdatedAt:       time.Now(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO system_config (id, extra_percentage, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		cfg.ID, cfg.ExtraPercentage, cfg.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to seed system config: %w", err)
	}
	return &cfg, nil
}

func (r *configRepository) Update(ctx context.Context, extraPercentage float64) (*domain.SystemConfig, error) {
	now := time.Now()
	var cfg domain.SystemConfig
	err := sqlx.GetContext(ctx, r.db, &cfg, `
		INSERT INTO system_config (id, extra_percentage, updated_at)
		VALUES ('default', $1, $2)
		ON CONFLICT (id) DO UPDATE SET extra_percentage = EXCLUDED.extra_percentage, updated_at = EXCLUDED.updated_at
		RETURNING id, extra_percentage, updated_at
	`, extraPercentage, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update system config: %w", err)
	}
	return &cfg, nil
}

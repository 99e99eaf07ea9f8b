package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clientdesk/backend/domain"
	"github.com/clientdesk/backend/repository"
)

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a Postgres-backed implementation of SettingsRepository.
// The thresholds live in a single versioned row.
func NewSettingsRepository(pool *pgxpool.Pool) repository.SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) GetThresholds(ctx context.Context) (domain.Thresholds, error) {
	const query = `SELECT active_within_days, at_risk_within_days FROM reconcile_settings WHERE id = 1`

	var t domain.Thresholds
	if err := r.pool.QueryRow(ctx, query).Scan(&t.ActiveWithinDays, &t.AtRiskWithinDays); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DefaultThresholds(), nil
		}
		return domain.Thresholds{}, err
	}
	return t, nil
}

func (r *settingsRepository) SaveThresholds(ctx context.Context, t domain.Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}

	const query = `
	INSERT INTO reconcile_settings (id, active_within_days, at_risk_within_days, updated_at)
	VALUES (1, $1, $2, NOW())
	ON CONFLICT (id) DO UPDATE SET
		active_within_days = EXCLUDED.active_within_days,
		at_risk_within_days = EXCLUDED.at_risk_within_days,
		updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query, t.ActiveWithinDays, t.AtRiskWithinDays)
	return err
}

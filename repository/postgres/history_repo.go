package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clientdesk/backend/domain"
	"github.com/clientdesk/backend/repository"
)

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository returns a Postgres-backed implementation of HistoryRepository.
func NewHistoryRepository(pool *pgxpool.Pool) repository.HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Append(ctx context.Context, entry *domain.ImportEntry) error {
	if entry == nil {
		return domain.ErrInvalidPayload
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO import_history (id, source, completed_at, inserted, merged, skipped, kept_both, failed)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.Source,
		entry.CompletedAt,
		entry.Inserted,
		entry.Merged,
		entry.Skipped,
		entry.KeptBoth,
		entry.Failed,
	)
	return err
}

func (r *historyRepository) List(ctx context.Context, limit int) ([]domain.ImportEntry, error) {
	const query = `
	SELECT id, source, completed_at, inserted, merged, skipped, kept_both, failed
	FROM import_history
	ORDER BY completed_at DESC
	LIMIT $1`

	rows, err := r.pool.Query(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ImportEntry
	for rows.Next() {
		var e domain.ImportEntry
		if err := rows.Scan(&e.ID, &e.Source, &e.CompletedAt, &e.Inserted, &e.Merged, &e.Skipped, &e.KeptBoth, &e.Failed); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

package repository

import (
	"context"

	"github.com/clientdesk/backend/domain"
)

// HistoryRepository appends one entry per completed batch. Entries are
// read-only after creation.
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.ImportEntry) error
	List(ctx context.Context, limit int) ([]domain.ImportEntry, error)
}

package usecase

import (
	"context"

	"github.com/clientdesk/backend/domain"
)

const (
	OperationUpsert = "upsert"
	OperationDelete = "delete"
)

// OperationBuffer abstracts the offline write buffer so use cases stay
// storage-agnostic. Failed writes are queued and replayed later.
type OperationBuffer interface {
	BufferCustomer(ctx context.Context, operation string, customer *domain.Customer) error
	BufferHistory(ctx context.Context, entry *domain.ImportEntry) error
}

package repository

import (
	"context"

	"github.com/clientdesk/backend/domain"
)

type CustomerFilter struct {
	Status string
	Limit  int
	Offset int
}

// CustomerRepository is the storage collaborator for canonical records. The
// engine assumes no concurrent writer during a batch run: get all, mutate
// many, read back.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	GetAll(ctx context.Context) ([]domain.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]domain.Customer, error)
	Upsert(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id string) error
}

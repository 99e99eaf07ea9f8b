package customer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientdesk/backend/domain"
	"github.com/clientdesk/backend/repository"
	"github.com/clientdesk/backend/usecase"
)

type stubCustomerRepo struct {
	customers map[string]*domain.Customer
	deleteErr error
}

func (r *stubCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCustomerRepo) GetByPhone(_ context.Context, _ string) (*domain.Customer, error) {
	return nil, domain.ErrCustomerNotFound
}

func (r *stubCustomerRepo) GetAll(_ context.Context) ([]domain.Customer, error) {
	return r.list(), nil
}

func (r *stubCustomerRepo) List(_ context.Context, _ repository.CustomerFilter) ([]domain.Customer, error) {
	return r.list(), nil
}

func (r *stubCustomerRepo) Upsert(_ context.Context, customer *domain.Customer) error {
	clone := *customer
	r.customers[customer.ID] = &clone
	return nil
}

func (r *stubCustomerRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.customers, id)
	return nil
}

func (r *stubCustomerRepo) list() []domain.Customer {
	out := make([]domain.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out
}

type stubSettingsRepo struct{}

func (stubSettingsRepo) GetThresholds(_ context.Context) (domain.Thresholds, error) {
	return domain.DefaultThresholds(), nil
}

func (stubSettingsRepo) SaveThresholds(_ context.Context, _ domain.Thresholds) error {
	return nil
}

type recordingBuffer struct {
	customerOps []string
}

func (b *recordingBuffer) BufferCustomer(_ context.Context, operation string, _ *domain.Customer) error {
	b.customerOps = append(b.customerOps, operation)
	return nil
}

func (b *recordingBuffer) BufferHistory(_ context.Context, _ *domain.ImportEntry) error {
	return nil
}

func TestGetCustomerReclassifiesOnRead(t *testing.T) {
	stale := time.Now().AddDate(0, 0, -200)
	repo := &stubCustomerRepo{customers: map[string]*domain.Customer{
		"c1": {ID: "c1", Phone: "5511987654321", LastPurchase: &stale, Status: domain.StatusActive},
	}}
	uc := New(repo, stubSettingsRepo{}, nil, nil)

	got, err := uc.GetCustomer(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, got.Status)
}

func TestDeleteCustomerNotFoundIsNotBuffered(t *testing.T) {
	buffer := &recordingBuffer{}
	repo := &stubCustomerRepo{
		customers: map[string]*domain.Customer{},
		deleteErr: fmt.Errorf("deleting customer: %w", domain.ErrCustomerNotFound),
	}
	uc := New(repo, stubSettingsRepo{}, buffer, nil)

	err := uc.DeleteCustomer(context.Background(), "missing")

	// A wrapped not-found still surfaces as not-found, never as a buffered
	// retry.
	assert.True(t, errors.Is(err, domain.ErrCustomerNotFound))
	assert.Empty(t, buffer.customerOps)
}

func TestDeleteCustomerBuffersOnStoreFailure(t *testing.T) {
	buffer := &recordingBuffer{}
	repo := &stubCustomerRepo{
		customers: map[string]*domain.Customer{"c1": {ID: "c1"}},
		deleteErr: errors.New("connection refused"),
	}
	uc := New(repo, stubSettingsRepo{}, buffer, nil)

	err := uc.DeleteCustomer(context.Background(), "c1")

	require.NoError(t, err)
	assert.Equal(t, []string{usecase.OperationDelete}, buffer.customerOps)
}

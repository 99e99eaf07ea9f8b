package customer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/clientdesk/backend/domain"
	"github.com/clientdesk/backend/repository"
	"github.com/clientdesk/backend/usecase"
)

type UseCase struct {
	customers repository.CustomerRepository
	settings  repository.SettingsRepository
	buffer    usecase.OperationBuffer
	logger    *zap.Logger
}

func New(customers repository.CustomerRepository, settings repository.SettingsRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		customers: customers,
		settings:  settings,
		buffer:    buffer,
		logger:    logger,
	}
}

// ListCustomers returns customers with their derived status fields refreshed
// against the current thresholds, so reads never serve stale classifications.
func (uc *UseCase) ListCustomers(ctx context.Context, filter repository.CustomerFilter) ([]domain.Customer, error) {
	customers, err := uc.customers.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	thresholds, now := uc.classifyContext(ctx)
	for i := range customers {
		customers[i].Reclassify(thresholds, now)
	}
	return customers, nil
}

func (uc *UseCase) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := uc.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	thresholds, now := uc.classifyContext(ctx)
	customer.Reclassify(thresholds, now)
	return customer, nil
}

func (uc *UseCase) DeleteCustomer(ctx context.Context, id string) error {
	if err := uc.customers.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return err
		}
		customer := &domain.Customer{ID: id}
		if uc.buffer != nil {
			if bufErr := uc.buffer.BufferCustomer(ctx, usecase.OperationDelete, customer); bufErr == nil {
				uc.logger.Warn("customer delete buffered", zap.String("customer_id", id), zap.Error(err))
				return nil
			}
		}
		return err
	}
	return nil
}

func (uc *UseCase) classifyContext(ctx context.Context) (domain.Thresholds, time.Time) {
	thresholds, err := uc.settings.GetThresholds(ctx)
	if err != nil {
		uc.logger.Warn("falling back to default thresholds", zap.Error(err))
		thresholds = domain.DefaultThresholds()
	}
	return thresholds, time.Now()
}

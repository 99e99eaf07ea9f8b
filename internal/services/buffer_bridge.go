package services

import (
	"context"
	"encoding/json"

	"github.com/clientdesk/backend/domain"
	"github.com/clientdesk/backend/internal/infrastructure/buffer"
	"github.com/clientdesk/backend/usecase"
)

type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferCustomer(ctx context.Context, operation string, customer *domain.Customer) error {
	if b.processor == nil || customer == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(customer)
	if err != nil {
		return err
	}
	item := buffer.Item{
		ID:        customer.ID,
		Entity:    buffer.EntityCustomer,
		Operation: operation,
		Data:      payload,
		Priority:  4,
	}
	return b.processor.BufferOperation(ctx, item)
}

func (b *BufferBridge) BufferHistory(ctx context.Context, entry *domain.ImportEntry) error {
	if b.processor == nil || entry == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	item := buffer.Item{
		ID:        entry.ID,
		Entity:    buffer.EntityHistory,
		Operation: buffer.OperationUpsert,
		Data:      payload,
		Priority:  2,
	}
	return b.processor.BufferOperation(ctx, item)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)

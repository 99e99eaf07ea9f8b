package repository

import (
	"context"

	"github.com/clientdesk/backend/domain"
)

// SettingsRepository persists the status thresholds alongside the store so a
// full recompute is an explicit, observable operation.
type SettingsRepository interface {
	GetThresholds(ctx context.Context) (domain.Thresholds, error)
	SaveThresholds(ctx context.Context, t domain.Thresholds) error
}

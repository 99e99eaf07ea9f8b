package domain

import (
	"math"
	"time"
)

// Status is the purchasing-recency lifecycle classification of a customer.
type Status string

const (
	StatusActive    Status = "active"
	StatusAtRisk    Status = "at-risk"
	StatusInactive  Status = "inactive"
	StatusNoHistory Status = "no-history"
)

// Thresholds holds the two day-count boundaries separating the lifecycle
// statuses. Invariant: AtRiskWithinDays > ActiveWithinDays > 0.
type Thresholds struct {
	ActiveWithinDays int `json:"active_within_days"`
	AtRiskWithinDays int `json:"at_risk_within_days"`
}

// DefaultThresholds returns the boundaries used until an operator configures
// their own.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ActiveWithinDays: 30,
		AtRiskWithinDays: 90,
	}
}

func (t Thresholds) Validate() error {
	if t.ActiveWithinDays <= 0 {
		return ErrInvalidThresholds
	}
	if t.AtRiskWithinDays <= t.ActiveWithinDays {
		return ErrInvalidThresholds
	}
	return nil
}

// Classify derives the lifecycle status and days-since-purchase from the
// last purchase date. Day counts round up: a purchase 1.2 days ago counts as
// day 2, so records drift toward the risk buckets early rather than late.
func (t Thresholds) Classify(lastPurchase *time.Time, now time.Time) (Status, *int) {
	if lastPurchase == nil || lastPurchase.IsZero() {
		return StatusNoHistory, nil
	}

	days := 0
	if diff := now.Sub(*lastPurchase); diff > 0 {
		days = int(math.Ceil(diff.Hours() / 24))
	}

	status := StatusInactive
	switch {
	case days <= t.ActiveWithinDays:
		status = StatusActive
	case days <= t.AtRiskWithinDays:
		status = StatusAtRisk
	}
	return status, &days
}

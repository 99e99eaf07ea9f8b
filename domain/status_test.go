package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, Thresholds{ActiveWithinDays: 30, AtRiskWithinDays: 90}.Validate())
	assert.Error(t, Thresholds{ActiveWithinDays: 0, AtRiskWithinDays: 90}.Validate())
	assert.Error(t, Thresholds{ActiveWithinDays: -5, AtRiskWithinDays: 90}.Validate())
	assert.Error(t, Thresholds{ActiveWithinDays: 90, AtRiskWithinDays: 90}.Validate())
	assert.Error(t, Thresholds{ActiveWithinDays: 90, AtRiskWithinDays: 30}.Validate())
}

func TestClassify(t *testing.T) {
	thresholds := DefaultThresholds()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	daysAgo := func(n int) *time.Time {
		d := now.AddDate(0, 0, -n)
		return &d
	}

	tests := []struct {
		name     string
		last     *time.Time
		status   Status
		wantDays int
	}{
		{"no purchase history", nil, StatusNoHistory, -1},
		{"purchased today", daysAgo(0), StatusActive, 0},
		{"purchased yesterday", daysAgo(1), StatusActive, 1},
		{"on active boundary", daysAgo(30), StatusActive, 30},
		{"just past active boundary", daysAgo(31), StatusAtRisk, 31},
		{"on at-risk boundary", daysAgo(90), StatusAtRisk, 90},
		{"just past at-risk boundary", daysAgo(91), StatusInactive, 91},
		{"long inactive", daysAgo(400), StatusInactive, 400},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, days := thresholds.Classify(tc.last, now)
			assert.Equal(t, tc.status, status)
			if tc.wantDays < 0 {
				assert.Nil(t, days)
				return
			}
			require.NotNil(t, days)
			assert.Equal(t, tc.wantDays, *days)
		})
	}
}

func TestClassifyRoundsPartialDaysUp(t *testing.T) {
	thresholds := Thresholds{ActiveWithinDays: 1, AtRiskWithinDays: 2}
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	last := now.Add(-30 * time.Hour)
	status, days := thresholds.Classify(&last, now)

	require.NotNil(t, days)
	assert.Equal(t, 2, *days)
	assert.Equal(t, StatusAtRisk, status)
}

func TestClassifyFuturePurchaseClampsToZero(t *testing.T) {
	thresholds := DefaultThresholds()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	future := now.Add(6 * time.Hour)
	status, days := thresholds.Classify(&future, now)

	require.NotNil(t, days)
	assert.Equal(t, 0, *days)
	assert.Equal(t, StatusActive, status)
}

func TestReclassifyReportsChange(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -45)
	customer := &Customer{LastPurchase: &last}

	assert.True(t, customer.Reclassify(DefaultThresholds(), now))
	assert.Equal(t, StatusAtRisk, customer.Status)

	// Same thresholds again: nothing moves.
	assert.False(t, customer.Reclassify(DefaultThresholds(), now))

	// Wider active window flips the record back.
	assert.True(t, customer.Reclassify(Thresholds{ActiveWithinDays: 60, AtRiskWithinDays: 120}, now))
	assert.Equal(t, StatusActive, customer.Status)
}

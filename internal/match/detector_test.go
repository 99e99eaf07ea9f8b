package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientdesk/backend/domain"
)

func existingCustomers() []domain.Customer {
	return []domain.Customer{
		{ID: "c1", Phone: "5511987654321", Name: "Maria Silva", Email: "maria@example.com"},
		{ID: "c2", Phone: "5511912345678", Name: "Joao Souza"},
	}
}

func TestDetectPhoneHitIsConflict(t *testing.T) {
	detector := NewDetector(existingCustomers(), Options{})

	result := detector.Detect(domain.IncomingRecord{Phone: "5511987654321", Name: "M. Silva"})

	assert.Equal(t, KindConflict, result.Kind)
	require.NotNil(t, result.Conflict)
	assert.Equal(t, "c1", result.Conflict.Existing.ID)
	assert.Equal(t, 100, result.Conflict.Score)
	assert.NotEmpty(t, result.Conflict.ID)
}

func TestDetectUnknownPhoneIsNew(t *testing.T) {
	detector := NewDetector(existingCustomers(), Options{})

	result := detector.Detect(domain.IncomingRecord{Phone: "5511955556666", Name: "Ana"})
	assert.Equal(t, KindNew, result.Kind)
	assert.Nil(t, result.Conflict)
}

func TestDetectBatchDuplicate(t *testing.T) {
	detector := NewDetector(existingCustomers(), Options{})
	rec := domain.IncomingRecord{Phone: "5511955556666", Name: "Ana"}

	first := detector.Detect(rec)
	second := detector.Detect(rec)

	assert.Equal(t, KindNew, first.Kind)
	assert.Equal(t, KindBatchDuplicate, second.Kind)
}

func TestDetectFuzzyMatchAboveThreshold(t *testing.T) {
	detector := NewDetector(existingCustomers(), Options{FuzzyThreshold: 85})

	// Different phone, same name and email: 80 + 20.
	result := detector.Detect(domain.IncomingRecord{
		Phone: "5511955556666",
		Name:  "Maria Silva",
		Email: "maria@example.com",
	})

	assert.Equal(t, KindConflict, result.Kind)
	require.NotNil(t, result.Conflict)
	assert.Equal(t, "c1", result.Conflict.Existing.ID)
	assert.Equal(t, 100, result.Conflict.Score)
}

func TestDetectFuzzyBelowThresholdIsNew(t *testing.T) {
	detector := NewDetector(existingCustomers(), Options{FuzzyThreshold: 85})

	result := detector.Detect(domain.IncomingRecord{Phone: "5511955556666", Name: "Marina Souza"})
	assert.Equal(t, KindNew, result.Kind)
}

func TestDetectFuzzyDisabledByDefault(t *testing.T) {
	detector := NewDetector(existingCustomers(), Options{})

	result := detector.Detect(domain.IncomingRecord{
		Phone: "5511955556666",
		Name:  "Maria Silva",
		Email: "maria@example.com",
	})
	assert.Equal(t, KindNew, result.Kind)
}

func TestDetectFuzzyTieGoesToMostRecentlyUpdated(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	existing := []domain.Customer{
		{ID: "old", Phone: "5511911110000", Name: "Maria Silva", UpdatedAt: older},
		{ID: "new", Phone: "5511922220000", Name: "Maria Silva", UpdatedAt: newer},
	}
	detector := NewDetector(existing, Options{FuzzyThreshold: 80})

	result := detector.Detect(domain.IncomingRecord{Phone: "5511955556666", Name: "Maria Silva"})

	assert.Equal(t, KindConflict, result.Kind)
	require.NotNil(t, result.Conflict)
	assert.Equal(t, "new", result.Conflict.Existing.ID)
}

func TestDetectConflictCarriesDiff(t *testing.T) {
	detector := NewDetector(existingCustomers(), Options{})

	result := detector.Detect(domain.IncomingRecord{
		Phone: "5511987654321",
		Name:  "Maria Aparecida Silva",
		Email: "maria.nova@example.com",
	})

	require.NotNil(t, result.Conflict)
	fields := make([]string, 0, len(result.Conflict.Diff))
	for _, d := range result.Conflict.Diff {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
}

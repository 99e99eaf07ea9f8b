package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientdesk/backend/domain"
)

var (
	runAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now   = time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)
)

func baseCustomer() *domain.Customer {
	last := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Customer{
		ID:           "c1",
		Phone:        "5511987654321",
		Name:         "Maria Silva",
		Email:        "maria@example.com",
		City:         "Sao Paulo",
		TotalSpent:   200,
		OrderCount:   2,
		LastPurchase: &last,
		Products: []domain.Product{
			{ID: "racao", Name: "Racao Premium", Quantity: 2, UnitPrice: 100},
		},
		Provenance: []domain.ProvenanceEntry{{Source: "file-import", At: created}},
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestMergeSumsCommerceFields(t *testing.T) {
	incoming := domain.IncomingRecord{
		Phone:      "5511987654321",
		TotalSpent: 150,
		OrderCount: 1,
	}

	merged := Merge(baseCustomer(), incoming, "marketplace", runAt, now)

	assert.Equal(t, 350.0, merged.TotalSpent)
	assert.Equal(t, 3, merged.OrderCount)
}

func TestMergeLaterPurchaseDateWins(t *testing.T) {
	newer := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	merged := Merge(baseCustomer(), domain.IncomingRecord{LastPurchase: &newer}, "marketplace", runAt, now)
	require.NotNil(t, merged.LastPurchase)
	assert.Equal(t, newer, *merged.LastPurchase)

	older := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	merged = Merge(baseCustomer(), domain.IncomingRecord{LastPurchase: &older}, "marketplace", runAt, now)
	require.NotNil(t, merged.LastPurchase)
	assert.Equal(t, *baseCustomer().LastPurchase, *merged.LastPurchase)
}

func TestMergeLongerStringWins(t *testing.T) {
	incoming := domain.IncomingRecord{
		Name: "Maria Aparecida Silva",
		City: "SP",
	}

	merged := Merge(baseCustomer(), incoming, "file-import", runAt, now)

	assert.Equal(t, "Maria Aparecida Silva", merged.Name)
	// Shorter incoming value never displaces a longer existing one.
	assert.Equal(t, "Sao Paulo", merged.City)
}

func TestMergeEmptyIncomingNeverOverwrites(t *testing.T) {
	merged := Merge(baseCustomer(), domain.IncomingRecord{}, "file-import", runAt, now)

	assert.Equal(t, "Maria Silva", merged.Name)
	assert.Equal(t, "maria@example.com", merged.Email)
	assert.Equal(t, "Sao Paulo", merged.City)
}

func TestMergeProductQuantitiesAccumulate(t *testing.T) {
	incoming := domain.IncomingRecord{
		Products: []domain.Product{
			{ID: "racao", Name: "Racao Premium Gold", Quantity: 3, UnitPrice: 110},
			{ID: "coleira", Name: "Coleira", Quantity: 1, UnitPrice: 25},
		},
	}

	merged := Merge(baseCustomer(), incoming, "marketplace", runAt, now)

	require.Len(t, merged.Products, 2)
	assert.Equal(t, 5, merged.Products[0].Quantity)
	// First-seen name wins for an existing product identity.
	assert.Equal(t, "Racao Premium", merged.Products[0].Name)
	assert.Equal(t, "coleira", merged.Products[1].ID)
	assert.Equal(t, 1, merged.Products[1].Quantity)
}

func TestMergeIdentityUntouched(t *testing.T) {
	existing := baseCustomer()
	merged := Merge(existing, domain.IncomingRecord{Name: "Maria Aparecida Silva"}, "file-import", runAt, now)

	assert.Equal(t, existing.ID, merged.ID)
	assert.Equal(t, existing.CreatedAt, merged.CreatedAt)
	assert.Equal(t, now, merged.UpdatedAt)
}

func TestMergeAppendsProvenanceOncePerRun(t *testing.T) {
	existing := baseCustomer()

	merged := Merge(existing, domain.IncomingRecord{TotalSpent: 10}, "marketplace", runAt, now)
	require.Len(t, merged.Provenance, 2)
	assert.Equal(t, "marketplace", merged.Provenance[1].Source)
	assert.Equal(t, runAt, merged.Provenance[1].At)

	// A second merge in the same run keeps provenance flat.
	again := Merge(merged, domain.IncomingRecord{TotalSpent: 5}, "marketplace", runAt, now)
	assert.Len(t, again.Provenance, 2)
}

func TestMergeDoesNotMutateExisting(t *testing.T) {
	existing := baseCustomer()
	incoming := domain.IncomingRecord{
		Name:       "Maria Aparecida Silva",
		TotalSpent: 150,
		Products:   []domain.Product{{ID: "coleira", Name: "Coleira", Quantity: 1}},
	}

	_ = Merge(existing, incoming, "marketplace", runAt, now)

	assert.Equal(t, "Maria Silva", existing.Name)
	assert.Equal(t, 200.0, existing.TotalSpent)
	assert.Len(t, existing.Products, 1)
	assert.Len(t, existing.Provenance, 1)
}

func TestMergeBirthdayFillsOnlyWhenMissing(t *testing.T) {
	birthday := time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC)
	merged := Merge(baseCustomer(), domain.IncomingRecord{Birthday: &birthday}, "file-import", runAt, now)
	require.NotNil(t, merged.Birthday)
	assert.Equal(t, birthday, *merged.Birthday)

	other := time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC)
	again := Merge(merged, domain.IncomingRecord{Birthday: &other}, "file-import", runAt, now)
	require.NotNil(t, again.Birthday)
	assert.Equal(t, birthday, *again.Birthday)
}

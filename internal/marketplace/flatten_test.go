package marketplace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientdesk/backend/domain"
	"github.com/clientdesk/backend/internal/normalize"
)

func TestFlattenAggregatesPerBuyer(t *testing.T) {
	jan := time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 5, 9, 30, 0, 0, time.UTC)

	orders := []Order{
		{
			ID: "o1", Status: "paid", Total: 120, CreatedAt: jan,
			Buyer: Buyer{Phone: "11987654321", Name: "Maria Silva"},
			Items: []OrderItem{{SKU: "racao", Name: "Racao Premium", Quantity: 2, UnitPrice: 60}},
		},
		{
			ID: "o2", Status: "paid", Total: 80, CreatedAt: feb,
			Buyer: Buyer{Phone: "11987654321", Name: "Maria A. Silva", Email: "maria@example.com"},
			Items: []OrderItem{{SKU: "racao", Name: "Racao Premium", Quantity: 1, UnitPrice: 80}},
		},
		{
			ID: "o3", Status: "paid", Total: 40, CreatedAt: jan,
			Buyer: Buyer{Phone: "11912345678", Name: "Joao Souza"},
			Items: []OrderItem{{Name: "Coleira Azul", Quantity: 1, UnitPrice: 40}},
		},
	}

	rows := Flatten(orders)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "11987654321", first[normalize.FieldPhone])
	assert.Equal(t, 200.0, first[normalize.FieldTotalSpent])
	assert.Equal(t, 2, first[normalize.FieldOrderCount])
	assert.Equal(t, feb, first[normalize.FieldLastPurchase])
	// The most recent order supplies the contact snapshot.
	assert.Equal(t, "Maria A. Silva", first[normalize.FieldName])

	products, ok := first[normalize.FieldProducts].([]domain.Product)
	require.True(t, ok)
	require.Len(t, products, 1)
	assert.Equal(t, 3, products[0].Quantity)

	second := rows[1]
	assert.Equal(t, "11912345678", second[normalize.FieldPhone])
	products, ok = second[normalize.FieldProducts].([]domain.Product)
	require.True(t, ok)
	require.Len(t, products, 1)
	// No SKU: the identity derives from the item name.
	assert.Equal(t, "coleiraazul", products[0].ID)
}

func TestFlattenSkipsOrdersWithoutBuyerPhone(t *testing.T) {
	orders := []Order{
		{ID: "o1", Status: "paid", Total: 50, Buyer: Buyer{Name: "Anonima"}},
	}
	assert.Empty(t, Flatten(orders))
}

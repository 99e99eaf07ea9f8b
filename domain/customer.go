package domain

import "time"

// Customer is the canonical record for one real-world person. The normalized
// phone acts as the practical join key across import sources; the ID is
// generated locally once and never recomputed from content.
type Customer struct {
	ID       string     `json:"id"`
	Phone    string     `json:"phone"`
	Name     string     `json:"name,omitempty"`
	Email    string     `json:"email,omitempty"`
	Street   string     `json:"street,omitempty"`
	City     string     `json:"city,omitempty"`
	State    string     `json:"state,omitempty"`
	ZipCode  string     `json:"zip_code,omitempty"`
	Birthday *time.Time `json:"birthday,omitempty"`

	TotalSpent   float64    `json:"total_spent"`
	OrderCount   int        `json:"order_count"`
	LastPurchase *time.Time `json:"last_purchase,omitempty"`
	Products     []Product  `json:"products,omitempty"`

	// Derived from LastPurchase and the current thresholds; recomputed,
	// never treated as a source of truth on its own.
	Status            Status `json:"status"`
	DaysSincePurchase *int   `json:"days_since_purchase,omitempty"`

	Provenance []ProvenanceEntry `json:"provenance,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is one entry of the purchased-product multiset. Quantities of the
// same product accumulate across imports.
type Product struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// ProvenanceEntry records one import or sync operation that touched the
// record. The provenance list is append-only.
type ProvenanceEntry struct {
	Source string    `json:"source"`
	At     time.Time `json:"at"`
}

func (c *Customer) Touch() {
	if c == nil {
		return
	}
	c.UpdatedAt = time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}
}

// Reclassify refreshes the derived status fields against the given
// thresholds. Returns true when either derived field changed.
func (c *Customer) Reclassify(t Thresholds, now time.Time) bool {
	status, days := t.Classify(c.LastPurchase, now)
	changed := c.Status != status || !intPtrEqual(c.DaysSincePurchase, days)
	c.Status = status
	c.DaysSincePurchase = days
	return changed
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

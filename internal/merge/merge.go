// Package merge combines two records known to represent the same customer.
// Merging is pure and deterministic and never fails: however inconsistent the
// inputs, a record comes out; data quality disagreements are surfaced as
// diffs during interactive resolution, not as errors here.
package merge

import (
	"time"

	"github.com/clientdesk/backend/domain"
)

// Merge folds an incoming record into a copy of the existing customer.
// Field rules: monetary totals and order counts sum, the later purchase date
// wins, product quantities accumulate per product identity, and for generic
// strings the longer non-empty value is kept. The id and created-at are
// untouched; updated-at is stamped to now. One provenance entry is appended
// unless the latest entry already names the same source and run.
func Merge(existing *domain.Customer, incoming domain.IncomingRecord, source string, runAt time.Time, now time.Time) *domain.Customer {
	merged := clone(existing)

	merged.Name = pickString(merged.Name, incoming.Name)
	merged.Email = pickString(merged.Email, incoming.Email)
	merged.Street = pickString(merged.Street, incoming.Street)
	merged.City = pickString(merged.City, incoming.City)
	merged.State = pickString(merged.State, incoming.State)
	merged.ZipCode = pickString(merged.ZipCode, incoming.ZipCode)
	if merged.Birthday == nil && incoming.Birthday != nil {
		merged.Birthday = copyTime(incoming.Birthday)
	}

	merged.TotalSpent += incoming.TotalSpent
	merged.OrderCount += incoming.OrderCount
	if laterDate(merged.LastPurchase, incoming.LastPurchase) {
		merged.LastPurchase = copyTime(incoming.LastPurchase)
	}
	merged.Products = mergeProducts(merged.Products, incoming.Products)

	if shouldAppendProvenance(merged.Provenance, source, runAt) {
		merged.Provenance = append(merged.Provenance, domain.ProvenanceEntry{Source: source, At: runAt})
	}
	merged.UpdatedAt = now

	return merged
}

// pickString prefers the longer non-empty value as a proxy for completeness.
// A non-empty existing value is never replaced by an empty incoming one.
func pickString(existing, incoming string) string {
	if incoming == "" {
		return existing
	}
	if existing == "" {
		return incoming
	}
	if len(incoming) > len(existing) {
		return incoming
	}
	return existing
}

func laterDate(existing, incoming *time.Time) bool {
	if incoming == nil {
		return false
	}
	return existing == nil || incoming.After(*existing)
}

// mergeProducts unions by product identity. Quantities of repeated products
// add; the first-seen name wins when names differ for the same identity.
func mergeProducts(existing, incoming []domain.Product) []domain.Product {
	if len(incoming) == 0 {
		return existing
	}

	out := make([]domain.Product, len(existing))
	copy(out, existing)

	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.ID] = i
	}

	for _, p := range incoming {
		if i, ok := index[p.ID]; ok {
			out[i].Quantity += p.Quantity
			if out[i].UnitPrice == 0 {
				out[i].UnitPrice = p.UnitPrice
			}
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}

// shouldAppendProvenance suppresses back-to-back entries from the same source
// within one run, so a batch revisiting a record does not fake extra history.
func shouldAppendProvenance(entries []domain.ProvenanceEntry, source string, runAt time.Time) bool {
	if len(entries) == 0 {
		return true
	}
	last := entries[len(entries)-1]
	return last.Source != source || !last.At.Equal(runAt)
}

func clone(c *domain.Customer) *domain.Customer {
	out := *c
	out.Birthday = copyTime(c.Birthday)
	out.LastPurchase = copyTime(c.LastPurchase)
	if c.DaysSincePurchase != nil {
		days := *c.DaysSincePurchase
		out.DaysSincePurchase = &days
	}
	out.Products = make([]domain.Product, len(c.Products))
	copy(out.Products, c.Products)
	out.Provenance = make([]domain.ProvenanceEntry, len(c.Provenance))
	copy(out.Provenance, c.Provenance)
	return &out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

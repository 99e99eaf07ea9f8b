package domain

import (
	"fmt"
	"strings"
)

// Resolution is the strategy chosen for one pending conflict.
type Resolution string

const (
	ResolutionSkip       Resolution = "skip"
	ResolutionKeepBoth   Resolution = "keep-both"
	ResolutionMergeSmart Resolution = "merge-smart"
)

// ParseResolution validates a caller-supplied resolution string.
func ParseResolution(value string) (Resolution, error) {
	switch Resolution(strings.ToLower(strings.TrimSpace(value))) {
	case ResolutionSkip:
		return ResolutionSkip, nil
	case ResolutionKeepBoth:
		return ResolutionKeepBoth, nil
	case ResolutionMergeSmart:
		return ResolutionMergeSmart, nil
	default:
		return "", WrapError(ErrCodeInvalid, fmt.Sprintf("unknown resolution %q", value), nil)
	}
}

// Conflict pairs an existing customer with an incoming record believed to
// describe the same person. It is consumed exactly once by the resolution
// workflow.
type Conflict struct {
	ID       string         `json:"id"`
	Existing *Customer      `json:"existing"`
	Incoming IncomingRecord `json:"incoming"`
	Score    int            `json:"score"`
	Diff     []FieldDiff    `json:"diff,omitempty"`
}

// FieldDiff is one disagreeing field surfaced to the caller while a conflict
// is being presented.
type FieldDiff struct {
	Field    string `json:"field"`
	Existing string `json:"existing"`
	Incoming string `json:"incoming"`
}

// DiffFields lists the contact and commerce fields where the two sides of a
// conflict disagree. Empty incoming values are not reported; they never
// overwrite anything during a merge.
func DiffFields(existing *Customer, incoming IncomingRecord) []FieldDiff {
	if existing == nil {
		return nil
	}

	var diffs []FieldDiff
	add := func(field, old, new string) {
		if new == "" || old == new {
			return
		}
		diffs = append(diffs, FieldDiff{Field: field, Existing: old, Incoming: new})
	}

	add("name", existing.Name, incoming.Name)
	add("email", existing.Email, incoming.Email)
	add("street", existing.Street, incoming.Street)
	add("city", existing.City, incoming.City)
	add("state", existing.State, incoming.State)
	add("zip_code", existing.ZipCode, incoming.ZipCode)

	if incoming.TotalSpent != 0 {
		diffs = append(diffs, FieldDiff{
			Field:    "total_spent",
			Existing: fmt.Sprintf("%.2f", existing.TotalSpent),
			Incoming: fmt.Sprintf("%.2f", incoming.TotalSpent),
		})
	}
	if incoming.LastPurchase != nil {
		old := ""
		if existing.LastPurchase != nil {
			old = existing.LastPurchase.Format("2006-01-02")
		}
		add("last_purchase", old, incoming.LastPurchase.Format("2006-01-02"))
	}

	return diffs
}

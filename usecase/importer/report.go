package importer

import "github.com/clientdesk/backend/domain"

// RowFailure records one dropped row. Row failures are never fatal: the batch
// keeps going and the failure surfaces in the report.
type RowFailure struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// BatchReport enumerates what one import/sync run did. A completed batch
// always returns counts even when some rows failed; partial success is the
// normal, expected outcome.
type BatchReport struct {
	BatchID string `json:"batch_id"`
	Source  string `json:"source"`

	Inserted int `json:"inserted"`
	Merged   int `json:"merged"`
	Skipped  int `json:"skipped"`
	KeptBoth int `json:"kept_both"`

	Failures []RowFailure `json:"validation_failures,omitempty"`

	// Duplicate marks a batch whose fingerprint was already applied; nothing
	// was processed.
	Duplicate bool `json:"duplicate,omitempty"`

	// Interactive state: the conflict currently presented and how many are
	// still queued behind it.
	PendingConflicts int           `json:"pending_conflicts"`
	Conflict         *ConflictView `json:"conflict,omitempty"`
}

// ConflictView is the pairwise presentation surfaced while a conflict awaits
// a decision.
type ConflictView struct {
	ID        string                `json:"id"`
	BatchID   string                `json:"batch_id"`
	Score     int                   `json:"score"`
	Diff      []domain.FieldDiff    `json:"diff,omitempty"`
	Existing  *domain.Customer      `json:"existing"`
	Incoming  domain.IncomingRecord `json:"incoming"`
	Remaining int                   `json:"remaining"`
}

func (r *BatchReport) entry() *domain.ImportEntry {
	return &domain.ImportEntry{
		ID:       r.BatchID,
		Source:   r.Source,
		Inserted: r.Inserted,
		Merged:   r.Merged,
		Skipped:  r.Skipped,
		KeptBoth: r.KeptBoth,
		Failed:   len(r.Failures),
	}
}

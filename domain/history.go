package domain

import "time"

// ImportEntry records one completed import or sync batch. Entries are
// read-only after creation.
type ImportEntry struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	CompletedAt time.Time `json:"completed_at"`

	Inserted int `json:"inserted"`
	Merged   int `json:"merged"`
	Skipped  int `json:"skipped"`
	KeptBoth int `json:"kept_both"`
	Failed   int `json:"failed"`
}

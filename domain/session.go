package domain

import "time"

// Session represents a cached operator session stored in Redis. Operators are
// the humans driving imports and conflict resolution through the UI.
type Session struct {
	ID         string            `json:"id"`
	OperatorID string            `json:"operator_id"`
	ExpiresAt  time.Time         `json:"expires_at"`
	CreatedAt  time.Time         `json:"created_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityCustomer = "customer"
	EntityHistory  = "history"

	OperationUpsert = "upsert"
	OperationDelete = "delete"
)

// Item represents a write that should be retried when the primary store is
// unavailable. Customer upserts outrank history appends so the canonical
// records land first when connectivity returns.
type Item struct {
	ID        string          `json:"id"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = 3
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}

package match

import (
	"github.com/google/uuid"

	"github.com/clientdesk/backend/domain"
)

// Kind is the per-record outcome of duplicate detection.
type Kind int

const (
	// KindNew means the record matched nothing and becomes a fresh customer.
	KindNew Kind = iota
	// KindConflict means the record collides with an existing customer.
	KindConflict
	// KindBatchDuplicate means an earlier row of the same batch already
	// claimed this phone; the record is silently dropped.
	KindBatchDuplicate
)

// Result is what Detect reports for one incoming record.
type Result struct {
	Kind     Kind
	Conflict *domain.Conflict
}

// Options tunes detection behavior per batch.
type Options struct {
	// FuzzyThreshold enables name/email similarity scanning for records with
	// no phone hit. Zero disables the fuzzy path entirely; marketplace syncs
	// rely solely on phone equality.
	FuzzyThreshold int
}

// Detector indexes the existing record set by normalized phone once per
// batch, then classifies incoming records one at a time.
type Detector struct {
	byPhone   map[string]*domain.Customer
	existing  []*domain.Customer
	seenBatch map[string]bool
	opts      Options
}

// NewDetector builds the phone index in a single pass over the store
// snapshot taken at the start of the batch.
func NewDetector(existing []domain.Customer, opts Options) *Detector {
	d := &Detector{
		byPhone:   make(map[string]*domain.Customer, len(existing)),
		existing:  make([]*domain.Customer, 0, len(existing)),
		seenBatch: make(map[string]bool),
		opts:      opts,
	}
	for i := range existing {
		c := &existing[i]
		d.existing = append(d.existing, c)
		if c.Phone != "" {
			d.byPhone[c.Phone] = c
		}
	}
	return d
}

// Detect decides whether the incoming record is new, a duplicate of an
// earlier row in the same batch, or a conflict against the existing store.
func (d *Detector) Detect(incoming domain.IncomingRecord) Result {
	if existing, ok := d.byPhone[incoming.Phone]; ok {
		return Result{Kind: KindConflict, Conflict: d.newConflict(existing, incoming, 100)}
	}

	if d.seenBatch[incoming.Phone] {
		return Result{Kind: KindBatchDuplicate}
	}

	if d.opts.FuzzyThreshold > 0 {
		if existing, score := d.bestFuzzyMatch(incoming); existing != nil && score >= d.opts.FuzzyThreshold {
			return Result{Kind: KindConflict, Conflict: d.newConflict(existing, incoming, score)}
		}
	}

	d.seenBatch[incoming.Phone] = true
	return Result{Kind: KindNew}
}

// bestFuzzyMatch scans the whole snapshot. Ties on score go to the most
// recently updated existing record.
func (d *Detector) bestFuzzyMatch(incoming domain.IncomingRecord) (*domain.Customer, int) {
	var best *domain.Customer
	bestScore := 0
	for _, candidate := range d.existing {
		score := Score(candidate, incoming)
		if score < bestScore {
			continue
		}
		if score == bestScore && (best == nil || !candidate.UpdatedAt.After(best.UpdatedAt)) {
			continue
		}
		best = candidate
		bestScore = score
	}
	return best, bestScore
}

func (d *Detector) newConflict(existing *domain.Customer, incoming domain.IncomingRecord, score int) *domain.Conflict {
	return &domain.Conflict{
		ID:       uuid.NewString(),
		Existing: existing,
		Incoming: incoming,
		Score:    score,
		Diff:     domain.DiffFields(existing, incoming),
	}
}

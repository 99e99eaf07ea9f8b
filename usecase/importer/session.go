package importer

import (
	"time"

	"github.com/clientdesk/backend/domain"
)

type sessionState int

const (
	stateIdle sessionState = iota
	statePresenting
)

// conflictSession is the state machine draining one batch's conflict queue.
// Four fields carry the whole workflow: the FIFO queue, the cursor, the
// sticky strategy and the accumulating report. The queue lives in memory
// only; a host restart loses it and the batch is simply re-run.
type conflictSession struct {
	id          string
	source      string
	runAt       time.Time
	fingerprint string
	thresholds  domain.Thresholds

	queue []*domain.Conflict
	pos   int

	// sticky, once set by applyToRemaining, resolves every later conflict
	// without further prompting.
	sticky domain.Resolution

	report *BatchReport
}

func (s *conflictSession) state() sessionState {
	if s.pos < len(s.queue) {
		return statePresenting
	}
	return stateIdle
}

func (s *conflictSession) current() *domain.Conflict {
	if s.state() != statePresenting {
		return nil
	}
	return s.queue[s.pos]
}

func (s *conflictSession) advance() {
	if s.pos < len(s.queue) {
		s.pos++
	}
}

func (s *conflictSession) remaining() int {
	if n := len(s.queue) - s.pos; n > 0 {
		return n
	}
	return 0
}

func (s *conflictSession) view() *ConflictView {
	conflict := s.current()
	if conflict == nil {
		return nil
	}
	return &ConflictView{
		ID:        conflict.ID,
		BatchID:   s.id,
		Score:     conflict.Score,
		Diff:      conflict.Diff,
		Existing:  conflict.Existing,
		Incoming:  conflict.Incoming,
		Remaining: s.remaining() - 1,
	}
}

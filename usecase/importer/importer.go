// Package importer drives one import/sync run end to end: normalize the
// incoming rows, detect collisions against the store snapshot, resolve
// conflicts interactively or in bulk, persist the results and append one
// import-history entry.
package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clientdesk/backend/domain"
	"github.com/clientdesk/backend/internal/match"
	"github.com/clientdesk/backend/internal/merge"
	"github.com/clientdesk/backend/internal/normalize"
	"github.com/clientdesk/backend/repository"
	"github.com/clientdesk/backend/usecase"
)

// Mode selects how conflicts are resolved during a batch.
type Mode string

const (
	// ModeInteractive queues conflicts and yields control to the caller one
	// conflict at a time.
	ModeInteractive Mode = "interactive"
	// ModeBulkAuto resolves every conflict as a smart merge with no prompting.
	ModeBulkAuto Mode = "bulk-auto"
)

// ParseMode validates a caller-supplied mode string.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeInteractive:
		return ModeInteractive, nil
	case ModeBulkAuto, "":
		return ModeBulkAuto, nil
	default:
		return "", domain.WrapError(domain.ErrCodeInvalid, fmt.Sprintf("unknown import mode %q", value), nil)
	}
}

// Config tunes the reconciliation engine.
type Config struct {
	// CountryCode is prefixed onto domestic phone numbers.
	CountryCode string
	// FuzzyThreshold enables similarity scanning for interactive file
	// imports when > 0. Marketplace syncs always use phone equality only.
	FuzzyThreshold int
}

// UseCase is the record reconciliation engine behind the import endpoints.
type UseCase struct {
	customers repository.CustomerRepository
	history   repository.HistoryRepository
	settings  repository.SettingsRepository
	guard     repository.ImportGuard
	buffer    usecase.OperationBuffer
	logger    *zap.Logger
	cfg       Config

	mu        sync.Mutex
	sessions  map[string]*conflictSession
	conflicts map[string]string // conflict id → batch id

	now func() time.Time
}

func New(
	customers repository.CustomerRepository,
	history repository.HistoryRepository,
	settings repository.SettingsRepository,
	guard repository.ImportGuard,
	buffer usecase.OperationBuffer,
	cfg Config,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CountryCode == "" {
		cfg.CountryCode = normalize.DefaultCountryCode
	}
	return &UseCase{
		customers: customers,
		history:   history,
		settings:  settings,
		guard:     guard,
		buffer:    buffer,
		logger:    logger,
		cfg:       cfg,
		sessions:  make(map[string]*conflictSession),
		conflicts: make(map[string]string),
		now:       time.Now,
	}
}

// RunBatch processes one batch of raw rows from the named source. Per-row
// validation misses are collected into the report, never fatal; only a store
// snapshot failure aborts the run.
func (uc *UseCase) RunBatch(ctx context.Context, rows []normalize.RawRow, source string, mode Mode) (*BatchReport, error) {
	report := &BatchReport{
		BatchID: uuid.NewString(),
		Source:  source,
	}

	fp := fingerprint(source, rows)
	if uc.alreadyApplied(ctx, fp) {
		report.Duplicate = true
		uc.logger.Info("duplicate batch rejected",
			zap.String("source", source),
			zap.String("fingerprint", fp))
		return report, nil
	}

	thresholds := uc.thresholds(ctx)

	existing, err := uc.customers.GetAll(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "loading store snapshot", err)
	}

	opts := match.Options{}
	if mode == ModeInteractive {
		opts.FuzzyThreshold = uc.cfg.FuzzyThreshold
	}
	detector := match.NewDetector(existing, opts)

	runAt := uc.now()
	var queue []*domain.Conflict

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			// Cancellation keeps whatever was already written; the batch is
			// re-run from scratch with a clean detection pass.
			return report, err
		}

		rec, err := normalize.Normalize(row, uc.cfg.CountryCode)
		if err != nil {
			report.Failures = append(report.Failures, RowFailure{Row: i, Reason: err.Error()})
			continue
		}

		result := detector.Detect(rec)
		switch result.Kind {
		case match.KindBatchDuplicate:
			// Same batch describing the same customer twice; only the first
			// row counts.
		case match.KindConflict:
			queue = append(queue, result.Conflict)
		case match.KindNew:
			customer := uc.newCustomer(rec, source, runAt, thresholds)
			if err := uc.persistCustomer(ctx, customer); err != nil {
				report.Failures = append(report.Failures, RowFailure{Row: i, Reason: err.Error()})
				continue
			}
			report.Inserted++
		}
	}

	if len(queue) == 0 {
		uc.finalize(ctx, report, fp, runAt)
		return report, nil
	}

	session := &conflictSession{
		id:     report.BatchID,
		source: source,
		runAt:  runAt,
		queue:  queue,
		report: report,
	}

	if mode == ModeBulkAuto {
		for session.state() == statePresenting {
			uc.apply(ctx, session, session.current(), domain.ResolutionMergeSmart, thresholds)
			session.advance()
		}
		uc.finalize(ctx, report, fp, runAt)
		return report, nil
	}

	uc.mu.Lock()
	session.fingerprint = fp
	session.thresholds = thresholds
	uc.sessions[session.id] = session
	for _, c := range queue {
		uc.conflicts[c.ID] = session.id
	}
	uc.mu.Unlock()

	report.PendingConflicts = session.remaining()
	report.Conflict = session.view()
	return report, nil
}

// Resume supplies the decision for the conflict currently presented. With
// applyToRemaining set, every conflict still queued behind it is resolved
// with the same strategy; the decision never applies retroactively.
func (uc *UseCase) Resume(ctx context.Context, conflictID string, decision domain.Resolution, applyToRemaining bool) (*BatchReport, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	batchID, ok := uc.conflicts[conflictID]
	if !ok {
		return nil, domain.ErrConflictNotFound
	}
	session := uc.sessions[batchID]
	if session == nil {
		return nil, domain.ErrConflictNotFound
	}

	current := session.current()
	if current == nil || current.ID != conflictID {
		return nil, domain.ErrConflictNotReady
	}

	uc.apply(ctx, session, current, decision, session.thresholds)
	delete(uc.conflicts, current.ID)
	session.advance()

	if applyToRemaining {
		session.sticky = decision
	}
	for session.sticky != "" && session.state() == statePresenting {
		next := session.current()
		uc.apply(ctx, session, next, session.sticky, session.thresholds)
		delete(uc.conflicts, next.ID)
		session.advance()
	}

	report := session.report
	if session.state() == stateIdle {
		delete(uc.sessions, session.id)
		uc.finalize(ctx, report, session.fingerprint, session.runAt)
		report.PendingConflicts = 0
		report.Conflict = nil
		return report, nil
	}

	report.PendingConflicts = session.remaining()
	report.Conflict = session.view()
	return report, nil
}

// Pending lists the conflict currently presented for every unfinished batch.
func (uc *UseCase) Pending() []ConflictView {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var views []ConflictView
	for _, session := range uc.sessions {
		if view := session.view(); view != nil {
			views = append(views, *view)
		}
	}
	return views
}

// Thresholds exposes the current status boundaries.
func (uc *UseCase) Thresholds(ctx context.Context) (domain.Thresholds, error) {
	return uc.settings.GetThresholds(ctx)
}

// RecomputeStatuses persists new thresholds and reclassifies every record in
// the store. Idempotent: a second call with identical thresholds changes
// nothing. Returns how many records moved to a different status.
func (uc *UseCase) RecomputeStatuses(ctx context.Context, t domain.Thresholds) (int, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if err := uc.settings.SaveThresholds(ctx, t); err != nil {
		return 0, domain.WrapError(domain.ErrCodeInternal, "saving thresholds", err)
	}

	customers, err := uc.customers.GetAll(ctx)
	if err != nil {
		return 0, domain.WrapError(domain.ErrCodeInternal, "loading store snapshot", err)
	}

	now := uc.now()
	updated := 0
	for i := range customers {
		customer := &customers[i]
		if !customer.Reclassify(t, now) {
			continue
		}
		if err := uc.persistCustomer(ctx, customer); err != nil {
			uc.logger.Error("status recompute write failed",
				zap.String("customer_id", customer.ID),
				zap.Error(err))
			continue
		}
		updated++
	}

	uc.logger.Info("statuses recomputed",
		zap.Int("active_within_days", t.ActiveWithinDays),
		zap.Int("at_risk_within_days", t.AtRiskWithinDays),
		zap.Int("updated", updated))
	return updated, nil
}

func (uc *UseCase) apply(ctx context.Context, s *conflictSession, conflict *domain.Conflict, decision domain.Resolution, thresholds domain.Thresholds) {
	switch decision {
	case domain.ResolutionSkip:
		s.report.Skipped++

	case domain.ResolutionKeepBoth:
		// Deliberate escape hatch for legitimately shared phones: the
		// incoming record becomes a brand-new customer even though its phone
		// matches an existing one.
		customer := uc.newCustomer(conflict.Incoming, s.source, s.runAt, thresholds)
		if err := uc.persistCustomer(ctx, customer); err != nil {
			s.report.Failures = append(s.report.Failures, RowFailure{Reason: err.Error()})
			return
		}
		s.report.KeptBoth++

	default: // ResolutionMergeSmart
		merged := merge.Merge(conflict.Existing, conflict.Incoming, s.source, s.runAt, uc.now())
		merged.Reclassify(thresholds, uc.now())
		if err := uc.persistCustomer(ctx, merged); err != nil {
			s.report.Failures = append(s.report.Failures, RowFailure{Reason: err.Error()})
			return
		}
		// Queued conflicts against the same customer share this snapshot
		// pointer with the detector's phone index. Write the merged state
		// back so a later row folds into the result, not the stale copy.
		*conflict.Existing = *merged
		s.report.Merged++
	}
}

func (uc *UseCase) newCustomer(rec domain.IncomingRecord, source string, runAt time.Time, thresholds domain.Thresholds) *domain.Customer {
	now := uc.now()
	customer := &domain.Customer{
		ID:           uuid.NewString(),
		Phone:        rec.Phone,
		Name:         rec.Name,
		Email:        rec.Email,
		Street:       rec.Street,
		City:         rec.City,
		State:        rec.State,
		ZipCode:      rec.ZipCode,
		Birthday:     rec.Birthday,
		TotalSpent:   rec.TotalSpent,
		OrderCount:   rec.OrderCount,
		LastPurchase: rec.LastPurchase,
		Products:     rec.Products,
		Provenance:   []domain.ProvenanceEntry{{Source: source, At: runAt}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	customer.Reclassify(thresholds, now)
	return customer
}

func (uc *UseCase) persistCustomer(ctx context.Context, customer *domain.Customer) error {
	if err := uc.customers.Upsert(ctx, customer); err != nil {
		if uc.buffer != nil {
			if bufErr := uc.buffer.BufferCustomer(ctx, usecase.OperationUpsert, customer); bufErr == nil {
				uc.logger.Warn("customer write buffered",
					zap.String("customer_id", customer.ID),
					zap.Error(err))
				return nil
			}
		}
		return err
	}
	return nil
}

func (uc *UseCase) finalize(ctx context.Context, report *BatchReport, fp string, runAt time.Time) {
	entry := report.entry()
	entry.CompletedAt = uc.now()

	if err := uc.history.Append(ctx, entry); err != nil {
		if uc.buffer == nil || uc.buffer.BufferHistory(ctx, entry) != nil {
			uc.logger.Error("import history append failed", zap.Error(err))
		}
	}

	if uc.guard != nil {
		if err := uc.guard.MarkApplied(ctx, fp); err != nil {
			uc.logger.Warn("import guard mark failed", zap.Error(err))
		}
	}

	uc.logger.Info("batch completed",
		zap.String("batch_id", report.BatchID),
		zap.String("source", report.Source),
		zap.Int("inserted", report.Inserted),
		zap.Int("merged", report.Merged),
		zap.Int("skipped", report.Skipped),
		zap.Int("kept_both", report.KeptBoth),
		zap.Int("failed", len(report.Failures)))
}

func (uc *UseCase) thresholds(ctx context.Context) domain.Thresholds {
	t, err := uc.settings.GetThresholds(ctx)
	if err != nil {
		uc.logger.Warn("falling back to default thresholds", zap.Error(err))
		return domain.DefaultThresholds()
	}
	return t
}

func (uc *UseCase) alreadyApplied(ctx context.Context, fp string) bool {
	if uc.guard == nil {
		return false
	}
	applied, err := uc.guard.Applied(ctx, fp)
	if err != nil {
		uc.logger.Warn("import guard lookup failed", zap.Error(err))
		return false
	}
	return applied
}

// fingerprint hashes the source label plus the row content so an identical
// re-upload of the same file is recognizable.
func fingerprint(source string, rows []normalize.RawRow) string {
	h := sha256.New()
	h.Write([]byte(source))
	for _, row := range rows {
		payload, _ := json.Marshal(row)
		h.Write(payload)
	}
	return hex.EncodeToString(h.Sum(nil))
}

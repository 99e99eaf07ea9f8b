package importer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientdesk/backend/domain"
	"github.com/clientdesk/backend/internal/normalize"
	"github.com/clientdesk/backend/repository"
)

type fakeCustomerRepo struct {
	byID map[string]*domain.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{byID: make(map[string]*domain.Customer)}
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeCustomerRepo) GetByPhone(_ context.Context, phone string) (*domain.Customer, error) {
	for _, c := range r.byID {
		if c.Phone == phone {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

func (r *fakeCustomerRepo) GetAll(_ context.Context) ([]domain.Customer, error) {
	out := make([]domain.Customer, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCustomerRepo) List(ctx context.Context, _ repository.CustomerFilter) ([]domain.Customer, error) {
	return r.GetAll(ctx)
}

func (r *fakeCustomerRepo) Upsert(_ context.Context, customer *domain.Customer) error {
	clone := *customer
	r.byID[customer.ID] = &clone
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrCustomerNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeCustomerRepo) byPhone(phone string) []*domain.Customer {
	var out []*domain.Customer
	for _, c := range r.byID {
		if c.Phone == phone {
			out = append(out, c)
		}
	}
	return out
}

type fakeHistoryRepo struct {
	entries []domain.ImportEntry
}

func (r *fakeHistoryRepo) Append(_ context.Context, entry *domain.ImportEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) List(_ context.Context, _ int) ([]domain.ImportEntry, error) {
	return r.entries, nil
}

type fakeSettingsRepo struct {
	thresholds domain.Thresholds
}

func (r *fakeSettingsRepo) GetThresholds(_ context.Context) (domain.Thresholds, error) {
	if r.thresholds == (domain.Thresholds{}) {
		return domain.DefaultThresholds(), nil
	}
	return r.thresholds, nil
}

func (r *fakeSettingsRepo) SaveThresholds(_ context.Context, t domain.Thresholds) error {
	r.thresholds = t
	return nil
}

type fakeGuard struct {
	applied map[string]bool
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{applied: make(map[string]bool)}
}

func (g *fakeGuard) Applied(_ context.Context, fp string) (bool, error) {
	return g.applied[fp], nil
}

func (g *fakeGuard) MarkApplied(_ context.Context, fp string) error {
	g.applied[fp] = true
	return nil
}

type engineFixture struct {
	uc        *UseCase
	customers *fakeCustomerRepo
	history   *fakeHistoryRepo
	settings  *fakeSettingsRepo
	guard     *fakeGuard
	now       time.Time
}

func newFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		customers: newFakeCustomerRepo(),
		history:   &fakeHistoryRepo{},
		settings:  &fakeSettingsRepo{},
		guard:     newFakeGuard(),
		now:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.uc = New(f.customers, f.history, f.settings, f.guard, nil,
		Config{CountryCode: "55", FuzzyThreshold: 0}, nil)
	f.uc.now = func() time.Time { return f.now }
	return f
}

func row(phone, name string, fields normalize.RawRow) normalize.RawRow {
	r := normalize.RawRow{
		normalize.FieldPhone: phone,
		normalize.FieldName:  name,
	}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

func TestRunBatchInsertsNewCustomers(t *testing.T) {
	f := newFixture(t)

	report, err := f.uc.RunBatch(context.Background(), []normalize.RawRow{
		row("(11) 98765-4321", "Maria Silva", normalize.RawRow{
			normalize.FieldTotalSpent:   "R$ 100,00",
			normalize.FieldLastPurchase: "20/02/2026",
		}),
		row("(11) 91234-5678", "Joao Souza", nil),
	}, "file-import", ModeInteractive)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	assert.Zero(t, report.PendingConflicts)
	assert.False(t, report.Duplicate)
	assert.Len(t, f.customers.byID, 2)

	maria := f.customers.byPhone("5511987654321")
	require.Len(t, maria, 1)
	assert.Equal(t, domain.StatusActive, maria[0].Status)
	require.Len(t, maria[0].Provenance, 1)
	assert.Equal(t, "file-import", maria[0].Provenance[0].Source)

	// One history entry for the completed batch.
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, 2, f.history.entries[0].Inserted)
}

func TestRunBatchCollectsRowFailures(t *testing.T) {
	f := newFixture(t)

	report, err := f.uc.RunBatch(context.Background(), []normalize.RawRow{
		row("123", "Broken Phone", nil),
		row("(11) 98765-4321", "Maria Silva", nil),
	}, "file-import", ModeBulkAuto)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 0, report.Failures[0].Row)
}

func TestRunBatchDropsBatchDuplicates(t *testing.T) {
	f := newFixture(t)

	report, err := f.uc.RunBatch(context.Background(), []normalize.RawRow{
		row("(11) 98765-4321", "Maria Silva", nil),
		row("11987654321", "Maria Silva Again", nil),
	}, "file-import", ModeBulkAuto)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Len(t, f.customers.byID, 1)
}

func TestRunBatchBulkAutoMergesConflicts(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.RunBatch(context.Background(), []normalize.RawRow{
		row("(11) 98765-4321", "Maria Silva", normalize.RawRow{
			normalize.FieldTotalSpent: 100.0,
			normalize.FieldOrderCount: 1,
		}),
	}, "file-import", ModeBulkAuto)
	require.NoError(t, err)

	report, err := f.uc.RunBatch(context.Background(), []normalize.RawRow{
		row("(11) 98765-4321", "Maria Aparecida Silva", normalize.RawRow{
			normalize.FieldTotalSpent: 50.0,
			normalize.FieldOrderCount: 1,
		}),
	}, "marketplace", ModeBulkAuto)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Merged)
	assert.Zero(t, report.Inserted)

	merged := f.customers.byPhone("5511987654321")
	require.Len(t, merged, 1)
	assert.Equal(t, "Maria Aparecida Silva", merged[0].Name)
	assert.Equal(t, 150.0, merged[0].TotalSpent)
	assert.Equal(t, 2, merged[0].OrderCount)
}

func TestRunBatchMergesRepeatedPhoneCumulatively(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.RunBatch(ctx, []normalize.RawRow{
		row("(11) 98765-4321", "Maria Silva", normalize.RawRow{
			normalize.FieldTotalSpent: 100.0,
			normalize.FieldOrderCount: 1,
		}),
	}, "seed", ModeBulkAuto)
	require.NoError(t, err)

	// Two rows of one batch hit the same existing customer; the second
	// merge must start from the first merge's result.
	report, err := f.uc.RunBatch(ctx, []normalize.RawRow{
		row("(11) 98765-4321", "Maria Silva", normalize.RawRow{
			normalize.FieldTotalSpent: 50.0,
			normalize.FieldOrderCount: 1,
		}),
		row("(11) 98765-4321", "Maria Silva", normalize.RawRow{
			normalize.FieldTotalSpent: 30.0,
			normalize.FieldOrderCount: 1,
		}),
	}, "marketplace", ModeBulkAuto)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Merged)

	maria := f.customers.byPhone("5511987654321")
	require.Len(t, maria, 1)
	assert.Equal(t, 180.0, maria[0].TotalSpent)
	assert.Equal(t, 3, maria[0].OrderCount)
	// Same source and run: the provenance suppression keeps one entry.
	require.Len(t, maria[0].Provenance, 2)
	assert.Equal(t, "marketplace", maria[0].Provenance[1].Source)
}

func TestResumeMergesRepeatedPhoneCumulatively(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.RunBatch(ctx, []normalize.RawRow{
		row("(11) 98765-4321", "Maria Silva", normalize.RawRow{
			normalize.FieldTotalSpent: 100.0,
			normalize.FieldOrderCount: 1,
		}),
	}, "seed", ModeBulkAuto)
	require.NoError(t, err)

	report, err := f.uc.RunBatch(ctx, []normalize.RawRow{
		row("(11) 98765-4321", "Maria Silva", normalize.RawRow{
			normalize.FieldTotalSpent: 50.0,
			normalize.FieldOrderCount: 1,
		}),
		row("(11) 98765-4321", "Maria Silva", normalize.RawRow{
			normalize.FieldTotalSpent: 30.0,
			normalize.FieldOrderCount: 1,
		}),
	}, "file-import", ModeInteractive)
	require.NoError(t, err)
	require.NotNil(t, report.Conflict)

	report, err = f.uc.Resume(ctx, report.Conflict.ID, domain.ResolutionMergeSmart, false)
	require.NoError(t, err)
	require.NotNil(t, report.Conflict)
	// The second conflict now presents the already-merged state.
	assert.Equal(t, 150.0, report.Conflict.Existing.TotalSpent)

	report, err = f.uc.Resume(ctx, report.Conflict.ID, domain.ResolutionMergeSmart, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Merged)

	maria := f.customers.byPhone("5511987654321")
	require.Len(t, maria, 1)
	assert.Equal(t, 180.0, maria[0].TotalSpent)
	assert.Equal(t, 3, maria[0].OrderCount)
}

func TestInteractiveConflictLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.RunBatch(ctx, []normalize.RawRow{
		row("(11) 98765-4321", "Maria Silva", nil),
		row("(11) 91234-5678", "Joao Souza", nil),
	}, "seed", ModeBulkAuto)
	require.NoError(t, err)

	report, err := f.uc.RunBatch(ctx, []normalize.RawRow{
		row("(11) 98765-4321", "Maria A. Silva", nil),
		row("(11) 91234-5678", "Joao S.", nil),
	}, "file-import", ModeInteractive)
	require.NoError(t, err)

	// The batch pauses on the first conflict; nothing is written yet.
	assert.Equal(t, 2, report.PendingConflicts)
	require.NotNil(t, report.Conflict)
	assert.Equal(t, 100, report.Conflict.Score)
	assert.Len(t, f.history.entries, 1)

	// Resolving out of order is rejected.
	second := f.uc.sessions[report.BatchID].queue[1]
	_, err = f.uc.Resume(ctx, second.ID, domain.ResolutionSkip, false)
	assert.ErrorIs(t, err, domain.ErrConflictNotReady)

	// Skip the first conflict; the second is presented next.
	report, err = f.uc.Resume(ctx, report.Conflict.ID, domain.ResolutionSkip, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.PendingConflicts)
	require.NotNil(t, report.Conflict)

	// Merge the last conflict; the batch finalizes.
	report, err = f.uc.Resume(ctx, report.Conflict.ID, domain.ResolutionMergeSmart, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Merged)
	assert.Zero(t, report.PendingConflicts)
	assert.Nil(t, report.Conflict)
	assert.Len(t, f.history.entries, 2)
	assert.Empty(t, f.uc.Pending())

	// A consumed conflict cannot be resolved again.
	_, err = f.uc.Resume(ctx, report.BatchID, domain.ResolutionSkip, false)
	assert.ErrorIs(t, err, domain.ErrConflictNotFound)
}

func TestResumeApplyToRemainingDrainsQueue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.RunBatch(ctx, []normalize.RawRow{
		row("(11) 98765-4321", "Maria Silva", nil),
		row("(11) 91234-5678", "Joao Souza", nil),
		row("(11) 95555-6666", "Ana Lima", nil),
	}, "seed", ModeBulkAuto)
	require.NoError(t, err)

	report, err := f.uc.RunBatch(ctx, []normalize.RawRow{
		row("(11) 98765-4321", "Maria A. Silva", nil),
		row("(11) 91234-5678", "Joao S. Souza", nil),
		row("(11) 95555-6666", "Ana de Lima", nil),
	}, "file-import", ModeInteractive)
	require.NoError(t, err)
	assert.Equal(t, 3, report.PendingConflicts)

	report, err = f.uc.Resume(ctx, report.Conflict.ID, domain.ResolutionMergeSmart, true)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Merged)
	assert.Zero(t, report.PendingConflicts)
	assert.Nil(t, report.Conflict)
	assert.Empty(t, f.uc.Pending())
}

func TestResolutionKeepBothCreatesSecondRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.RunBatch(ctx, []normalize.RawRow{
		row("(11) 98765-4321", "Maria Silva", nil),
	}, "seed", ModeBulkAuto)
	require.NoError(t, err)

	report, err := f.uc.RunBatch(ctx, []normalize.RawRow{
		row("(11) 98765-4321", "Irma da Maria", nil),
	}, "file-import", ModeInteractive)
	require.NoError(t, err)
	require.NotNil(t, report.Conflict)

	report, err = f.uc.Resume(ctx, report.Conflict.ID, domain.ResolutionKeepBoth, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.KeptBoth)

	// Two distinct records now share the phone.
	shared := f.customers.byPhone("5511987654321")
	assert.Len(t, shared, 2)
}

func TestRunBatchRejectsDuplicateFingerprint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rows := []normalize.RawRow{
		row("(11) 98765-4321", "Maria Silva", normalize.RawRow{
			normalize.FieldTotalSpent: 100.0,
		}),
	}

	first, err := f.uc.RunBatch(ctx, rows, "file-import", ModeBulkAuto)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)

	second, err := f.uc.RunBatch(ctx, rows, "file-import", ModeBulkAuto)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Zero(t, second.Inserted)

	// Totals were not double counted.
	maria := f.customers.byPhone("5511987654321")
	require.Len(t, maria, 1)
	assert.Equal(t, 100.0, maria[0].TotalSpent)

	// The same rows under another source are a different batch.
	third, err := f.uc.RunBatch(ctx, rows, "other-system", ModeBulkAuto)
	require.NoError(t, err)
	assert.False(t, third.Duplicate)
}

func TestRecomputeStatuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.RunBatch(ctx, []normalize.RawRow{
		row("(11) 98765-4321", "Maria Silva", normalize.RawRow{
			normalize.FieldLastPurchase: "25/11/2025", // 96.5 days before now, rounds up to 97
		}),
		row("(11) 91234-5678", "Joao Souza", normalize.RawRow{
			normalize.FieldLastPurchase: "20/02/2026", // 9 days before now
		}),
		row("(11) 95555-6666", "Ana Lima", nil),
	}, "seed", ModeBulkAuto)
	require.NoError(t, err)

	maria := f.customers.byPhone("5511987654321")[0]
	assert.Equal(t, domain.StatusInactive, maria.Status)

	// Widening the windows pulls Maria back to at-risk; Joao and Ana are
	// unchanged and do not count as updates.
	updated, err := f.uc.RecomputeStatuses(ctx, domain.Thresholds{ActiveWithinDays: 30, AtRiskWithinDays: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	maria = f.customers.byPhone("5511987654321")[0]
	assert.Equal(t, domain.StatusAtRisk, maria.Status)
	require.NotNil(t, maria.DaysSincePurchase)
	assert.Equal(t, 97, *maria.DaysSincePurchase)

	ana := f.customers.byPhone("5511955556666")[0]
	assert.Equal(t, domain.StatusNoHistory, ana.Status)

	// Idempotent: a second identical recompute changes nothing.
	updated, err = f.uc.RecomputeStatuses(ctx, domain.Thresholds{ActiveWithinDays: 30, AtRiskWithinDays: 100})
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestRecomputeStatusesRejectsInvalidThresholds(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.RecomputeStatuses(context.Background(), domain.Thresholds{ActiveWithinDays: 90, AtRiskWithinDays: 30})
	assert.ErrorIs(t, err, domain.ErrInvalidThresholds)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("interactive")
	require.NoError(t, err)
	assert.Equal(t, ModeInteractive, mode)

	mode, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeBulkAuto, mode)

	_, err = ParseMode("yolo")
	assert.Error(t, err)
}

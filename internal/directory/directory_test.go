package directory

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/AdamLukas17/something-sweet/internal/domain"
	"github.com/AdamLukas17/something-sweet/internal/store"
)

func newTestService(t *testing.T, now time.Time) *Service {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	svc := New(repo, rand.New(rand.NewSource(7)))
	return svc.WithClock(func() time.Time { return now })
}

func TestRegisterRoundTrip(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)
	ctx := context.Background()

	created, err := svc.Register(ctx, "101", "201")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := svc.FindByTelegramID(ctx, "101")
	if err != nil {
		t.Fatalf("FindByTelegramID: %v", err)
	}
	if got.TelegramID != "101" || got.ChatID != "201" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Frequency != domain.Weekly {
		t.Fatalf("default frequency = %s, want weekly", got.Frequency)
	}
	if got.IsPaused {
		t.Fatal("new user is paused")
	}
	if got.NextRunAt == nil {
		t.Fatal("NextRunAt not set on registration")
	}
	if !got.NextRunAt.Equal(*created.NextRunAt) {
		t.Fatalf("persisted NextRunAt %v != returned %v", got.NextRunAt, created.NextRunAt)
	}
	if !got.NextRunAt.After(now) {
		t.Fatalf("NextRunAt %v not after registration time %v", got.NextRunAt, now)
	}
}

func TestLookupUnregistered(t *testing.T) {
	svc := newTestService(t, time.Now().UTC())
	if _, err := svc.FindByTelegramID(context.Background(), "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want store.ErrNotFound", err)
	}
	if _, err := svc.Pause(context.Background(), "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Pause err = %v, want store.ErrNotFound", err)
	}
	if _, err := svc.UpdateFrequency(context.Background(), "nobody", domain.Daily); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("UpdateFrequency err = %v, want store.ErrNotFound", err)
	}
}

// Full lifecycle: monthly registration, cadence change, pause, resume.
func TestLifecycleScenario(t *testing.T) {
	t0 := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, t0)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "u", "c"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Monthly: next run lands in the following calendar month.
	u, err := svc.UpdateFrequency(ctx, "u", domain.Monthly)
	if err != nil {
		t.Fatalf("UpdateFrequency(monthly): %v", err)
	}
	if u.NextRunAt.Month() != time.April || u.NextRunAt.Year() != 2025 {
		t.Fatalf("monthly NextRunAt = %v, want April 2025", u.NextRunAt)
	}

	// Daily: recalculated to t0+1 day (date component; time is jittered).
	u, err = svc.UpdateFrequency(ctx, "u", domain.Daily)
	if err != nil {
		t.Fatalf("UpdateFrequency(daily): %v", err)
	}
	if u.NextRunAt.Day() != 2 || u.NextRunAt.Month() != time.March {
		t.Fatalf("daily NextRunAt = %v, want March 2", u.NextRunAt)
	}

	// Pause: excluded from FindDue at any future instant; schedule kept.
	u, err = svc.Pause(ctx, "u")
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if u.NextRunAt == nil {
		t.Fatal("pause cleared NextRunAt")
	}
	farFuture := t0.AddDate(1, 0, 0)
	due, err := svc.FindDue(ctx, farFuture)
	if err != nil {
		t.Fatalf("FindDue: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("paused user is due: %+v", due)
	}

	// Resume: immediately due.
	if _, err := svc.Resume(ctx, "u"); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	due, err = svc.FindDue(ctx, t0)
	if err != nil {
		t.Fatalf("FindDue after resume: %v", err)
	}
	if len(due) != 1 || due[0].TelegramID != "u" {
		t.Fatalf("resumed user not due: %+v", due)
	}
}

// pauseBetweenRepo flips is_paused on the underlying store right after a
// read returns, modelling a /pause committed between the sweep's read of
// the user and its post-delivery schedule write.
type pauseBetweenRepo struct {
	store.Repo
}

func (r *pauseBetweenRepo) GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	u, err := r.Repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	stale := *u // snapshot before the concurrent pause lands
	paused := *u
	paused.IsPaused = true
	paused.UpdatedAt = paused.UpdatedAt.Add(time.Second)
	if err := r.Repo.Update(ctx, &paused); err != nil {
		return nil, err
	}
	return &stale, nil
}

func TestRecordDeliveryPreservesConcurrentPause(t *testing.T) {
	t0 := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	ctx := context.Background()

	plain := New(repo, rand.New(rand.NewSource(7))).WithClock(func() time.Time { return t0 })
	if _, err := plain.Register(ctx, "u", "c"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	racy := New(&pauseBetweenRepo{Repo: repo}, rand.New(rand.NewSource(7))).
		WithClock(func() time.Time { return t0 })
	if err := racy.RecordDelivery(ctx, "u", t0); err != nil {
		t.Fatalf("RecordDelivery: %v", err)
	}

	got, err := repo.GetByTelegramID(ctx, "u")
	if err != nil {
		t.Fatalf("GetByTelegramID: %v", err)
	}
	if !got.IsPaused {
		t.Fatal("pause committed mid-delivery was overwritten by the schedule update")
	}
	if got.NextRunAt == nil || !got.NextRunAt.After(t0) {
		t.Fatalf("NextRunAt = %v, want advanced past %v", got.NextRunAt, t0)
	}
}

func TestRecordDeliveryAdvancesSchedule(t *testing.T) {
	t0 := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, t0)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "u", "c"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Resume(ctx, "u"); err != nil { // NextRunAt = t0, due now
		t.Fatalf("Resume: %v", err)
	}

	deliveredAt := t0
	if err := svc.RecordDelivery(ctx, "u", deliveredAt); err != nil {
		t.Fatalf("RecordDelivery: %v", err)
	}

	u, err := svc.FindByTelegramID(ctx, "u")
	if err != nil {
		t.Fatalf("FindByTelegramID: %v", err)
	}
	if u.NextRunAt == nil || !u.NextRunAt.After(deliveredAt) {
		t.Fatalf("NextRunAt = %v, want strictly after %v", u.NextRunAt, deliveredAt)
	}

	due, err := svc.FindDue(ctx, deliveredAt)
	if err != nil {
		t.Fatalf("FindDue: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("user still due at delivery instant: %+v", due)
	}
}

package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/AdamLukas17/something-sweet/internal/catalog"
	"github.com/AdamLukas17/something-sweet/internal/domain"
	"github.com/AdamLukas17/something-sweet/internal/notify"
)

type fakeDirectory struct {
	users       []domain.User
	rescheduled map[string]time.Time
	findErr     error
}

func (f *fakeDirectory) FindDue(_ context.Context, asOf time.Time) ([]domain.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var due []domain.User
	for _, u := range f.users {
		if u.Due(asOf) {
			due = append(due, u)
		}
	}
	return due, nil
}

func (f *fakeDirectory) RecordDelivery(_ context.Context, telegramID string, deliveredAt time.Time) error {
	if f.rescheduled == nil {
		f.rescheduled = make(map[string]time.Time)
	}
	f.rescheduled[telegramID] = deliveredAt
	return nil
}

type fakeSender struct {
	failFor map[string]bool // telegramID -> report delivery failure
	sent    []notify.Payload
}

func (f *fakeSender) Send(_ context.Context, p notify.Payload, _ string) (bool, error) {
	if f.failFor[p.UserID] {
		return false, nil
	}
	f.sent = append(f.sent, p)
	return true, nil
}

type fakeSampler struct{ idea catalog.Idea }

func (f *fakeSampler) Pick(domain.Rand) catalog.Idea { return f.idea }

func dueUser(id string, nextRun time.Time) domain.User {
	return domain.User{
		TelegramID: id,
		ChatID:     id,
		Frequency:  domain.Weekly,
		NextRunAt:  &nextRun,
	}
}

func newTestSweeper(dir Directory, sender Sender, now time.Time) *Sweeper {
	sampler := &fakeSampler{idea: catalog.Idea{ID: 1, Title: "t", Description: "d", Category: "c"}}
	s := New(dir, sender, sampler, fixedRand(0), zap.NewNop(), time.Hour)
	return s.WithClock(func() time.Time { return now })
}

type fixedRand int

func (f fixedRand) Intn(n int) int { return int(f) % n }

func TestRunOnceDeliversAndReschedules(t *testing.T) {
	now := time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{users: []domain.User{
		dueUser("u1", now.Add(-time.Hour)),
		dueUser("u2", now.Add(-time.Minute)),
	}}
	sender := &fakeSender{}

	sent, err := newTestSweeper(dir, sender, now).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
	for _, id := range []string{"u1", "u2"} {
		if _, ok := dir.rescheduled[id]; !ok {
			t.Fatalf("user %s not rescheduled after delivery", id)
		}
	}
}

func TestRunOncePartialFailure(t *testing.T) {
	now := time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{users: []domain.User{
		dueUser("ok1", now.Add(-time.Hour)),
		dueUser("bad", now.Add(-time.Hour)),
		dueUser("ok2", now.Add(-time.Hour)),
	}}
	sender := &fakeSender{failFor: map[string]bool{"bad": true}}

	sent, err := newTestSweeper(dir, sender, now).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want 2 (one delivery failed)", sent)
	}
	if _, ok := dir.rescheduled["bad"]; ok {
		t.Fatal("failed user was rescheduled; schedule must stay untouched for retry")
	}
	for _, id := range []string{"ok1", "ok2"} {
		if _, ok := dir.rescheduled[id]; !ok {
			t.Fatalf("user %s not rescheduled", id)
		}
	}
}

func TestRunOnceSkipsPausedAndFutureUsers(t *testing.T) {
	now := time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
	paused := dueUser("paused", now.Add(-time.Hour))
	paused.IsPaused = true
	future := dueUser("future", now.Add(time.Hour))

	dir := &fakeDirectory{users: []domain.User{paused, future}}
	sender := &fakeSender{}

	sent, err := newTestSweeper(dir, sender, now).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if sent != 0 || len(sender.sent) != 0 {
		t.Fatalf("sent = %d, deliveries = %d, want 0", sent, len(sender.sent))
	}
}

// panicDirectory models a storage layer that panics mid-sweep.
type panicDirectory struct{}

func (panicDirectory) FindDue(context.Context, time.Time) ([]domain.User, error) {
	panic("storage layer gone")
}

func (panicDirectory) RecordDelivery(context.Context, string, time.Time) error { return nil }

func TestSweepSurvivesPanic(t *testing.T) {
	now := time.Now().UTC()
	s := newTestSweeper(panicDirectory{}, &fakeSender{}, now)

	// Must not propagate; the ticker loop has to keep firing.
	s.sweep(context.Background())

	// The guard lock must have been released: a later sweep still runs.
	s.sweep(context.Background())
}

// blockingSender parks the first delivery until released, keeping a sweep
// in flight.
type blockingSender struct {
	calls   int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingSender) Send(_ context.Context, _ notify.Payload, _ string) (bool, error) {
	if atomic.AddInt32(&b.calls, 1) == 1 {
		close(b.started)
	}
	<-b.release
	return true, nil
}

func TestSweepSkipsTickWhileRunning(t *testing.T) {
	now := time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{users: []domain.User{dueUser("u1", now.Add(-time.Hour))}}
	sender := &blockingSender{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newTestSweeper(dir, sender, now)

	done := make(chan struct{})
	go func() {
		s.sweep(context.Background())
		close(done)
	}()
	<-sender.started

	// First sweep is parked inside Send; this tick must skip entirely.
	s.sweep(context.Background())
	if got := atomic.LoadInt32(&sender.calls); got != 1 {
		t.Fatalf("overlapping sweep delivered: %d sends, want 1", got)
	}

	close(sender.release)
	<-done
	if got := atomic.LoadInt32(&sender.calls); got != 1 {
		t.Fatalf("sends after release = %d, want 1", got)
	}
}

func TestRunOnceFindDueError(t *testing.T) {
	dir := &fakeDirectory{findErr: errors.New("db down")}
	sender := &fakeSender{}
	now := time.Now().UTC()

	if _, err := newTestSweeper(dir, sender, now).RunOnce(context.Background()); err == nil {
		t.Fatal("expected error when due lookup fails")
	}
}

func TestRunOnceRendersIdea(t *testing.T) {
	now := time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{users: []domain.User{dueUser("u1", now.Add(-time.Hour))}}
	sender := &fakeSender{}

	if _, err := newTestSweeper(dir, sender, now).RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(sender.sent))
	}
	if sender.sent[0].Body == "" || sender.sent[0].ChatID != "u1" {
		t.Fatalf("unexpected payload: %+v", sender.sent[0])
	}
}

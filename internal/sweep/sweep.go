// Package sweep drives the delivery loop: find due users, send each one a
// random idea, and push their schedule forward on success.
package sweep

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AdamLukas17/something-sweet/internal/catalog"
	"github.com/AdamLukas17/something-sweet/internal/domain"
	"github.com/AdamLukas17/something-sweet/internal/notify"
)

// Directory is the slice of the user directory the sweep needs.
type Directory interface {
	FindDue(ctx context.Context, asOf time.Time) ([]domain.User, error)
	RecordDelivery(ctx context.Context, telegramID string, deliveredAt time.Time) error
}

// Sender dispatches one payload through the default provider.
type Sender interface {
	Send(ctx context.Context, p notify.Payload, providerName string) (bool, error)
}

// Sampler draws one idea from the catalog.
type Sampler interface {
	Pick(r domain.Rand) catalog.Idea
}

// Sweeper runs delivery sweeps on a fixed interval.
type Sweeper struct {
	dir      Directory
	sender   Sender
	sampler  Sampler
	rnd      domain.Rand
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time

	// Guards against overlapping sweeps when one pass outlives the
	// interval: a tick is skipped while the previous sweep still runs.
	running sync.Mutex
}

func New(dir Directory, sender Sender, sampler Sampler, rnd domain.Rand, log *zap.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		dir:      dir,
		sender:   sender,
		sampler:  sampler,
		rnd:      rnd,
		log:      log,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Tests only.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Run sweeps once immediately, then on every interval tick until ctx is
// canceled. Sweep errors are logged and never stop the loop.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweep loop stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if !s.running.TryLock() {
		s.log.Warn("previous sweep still running, skipping tick")
		return
	}
	defer s.running.Unlock()

	// A panicking store or provider must not take down the process; the
	// ticker keeps firing and the next sweep retries.
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("sweep panicked", zap.Any("panic", r))
		}
	}()

	sent, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Error("sweep failed", zap.Error(err))
		return
	}
	s.log.Info("sweep complete", zap.Int("sent", sent))
}

// RunOnce performs a single sweep and returns the number of successful
// deliveries. Due users are a snapshot taken at the start; one user's
// failure never aborts the others, and a failed user keeps their old
// NextRunAt so the next sweep retries them.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	start := s.now()

	users, err := s.dir.FindDue(ctx, start)
	if err != nil {
		return 0, err
	}
	s.log.Info("found users due for notification", zap.Int("count", len(users)))

	sent := 0
	for _, u := range users {
		idea := s.sampler.Pick(s.rnd)
		payload := notify.Payload{
			UserID: u.TelegramID,
			ChatID: u.ChatID,
			Body:   catalog.Render(idea),
		}

		ok, err := s.sender.Send(ctx, payload, "")
		if err != nil || !ok {
			s.log.Error("delivery failed",
				zap.String("telegramID", u.TelegramID),
				zap.Error(err),
			)
			continue
		}

		if err := s.dir.RecordDelivery(ctx, u.TelegramID, s.now()); err != nil {
			// Delivered but not rescheduled: the user stays due and may
			// receive a duplicate next sweep. Accepted over a missed one.
			s.log.Error("reschedule after delivery failed",
				zap.String("telegramID", u.TelegramID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}
	return sent, nil
}

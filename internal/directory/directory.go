// Package directory owns the user lifecycle: registration, cadence changes,
// pause/resume, due-user selection, and post-delivery rescheduling. It is
// the single place where the schedule calculator meets the storage port, so
// the command handlers and the sweep loop share one set of rules.
package directory

import (
	"context"
	"time"

	"github.com/AdamLukas17/something-sweet/internal/domain"
	"github.com/AdamLukas17/something-sweet/internal/store"
)

type Service struct {
	repo store.Repo
	rnd  domain.Rand
	now  func() time.Time
}

func New(repo store.Repo, rnd domain.Rand) *Service {
	return &Service{
		repo: repo,
		rnd:  rnd,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// FindByTelegramID looks up a user; store.ErrNotFound when unregistered.
func (s *Service) FindByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	return s.repo.GetByTelegramID(ctx, telegramID)
}

// Register creates a user with the default weekly cadence and a freshly
// calculated first reminder time. Callers check FindByTelegramID first;
// registration is idempotent at the command layer, not here.
func (s *Service) Register(ctx context.Context, telegramID, chatID string) (*domain.User, error) {
	now := s.now()
	next := domain.NextRun(domain.DefaultFrequency, now, s.rnd)
	u := &domain.User{
		TelegramID: telegramID,
		ChatID:     chatID,
		Frequency:  domain.DefaultFrequency,
		NextRunAt:  &next,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateFrequency switches the cadence and recalculates the next reminder
// from now. store.ErrNotFound when unregistered.
func (s *Service) UpdateFrequency(ctx context.Context, telegramID string, f domain.Frequency) (*domain.User, error) {
	u, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	next := domain.NextRun(f, now, s.rnd)
	u.Frequency = f
	u.NextRunAt = &next
	u.UpdatedAt = now
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Pause excludes the user from sweeps. NextRunAt is left alone.
func (s *Service) Pause(ctx context.Context, telegramID string) (*domain.User, error) {
	u, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	u.IsPaused = true
	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Resume clears the pause flag and resets NextRunAt to now, so the user is
// picked up by the very next sweep.
func (s *Service) Resume(ctx context.Context, telegramID string) (*domain.User, error) {
	u, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	u.IsPaused = false
	u.NextRunAt = &now
	u.UpdatedAt = now
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// FindDue returns every non-paused user whose reminder time has arrived.
func (s *Service) FindDue(ctx context.Context, asOf time.Time) ([]domain.User, error) {
	return s.repo.ListDue(ctx, asOf)
}

// RecordDelivery advances the schedule after a successful send. It always
// recomputes forward from deliveredAt and does not re-check the pause flag.
// Only the schedule columns are written: a pause or cadence change
// committed between the read and this write survives.
func (s *Service) RecordDelivery(ctx context.Context, telegramID string, deliveredAt time.Time) error {
	u, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}
	next := domain.NextRun(u.Frequency, deliveredAt, s.rnd)
	return s.repo.SetNextRun(ctx, telegramID, next, s.now())
}

package store

import (
	"context"
	"errors"
	"time"

	"github.com/AdamLukas17/something-sweet/internal/domain"
)

// ErrNotFound is returned by lookups for unregistered users.
var ErrNotFound = errors.New("user not found")

// Repo is the storage port. The core needs only a point lookup by telegram
// id, insert, update by telegram id, and the due-range predicate.
// Implementations: SQLite (development) and Postgres (production).
type Repo interface {
	// GetByTelegramID returns the user or ErrNotFound.
	GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error)
	// Insert persists a new user and fills in the generated row id.
	Insert(ctx context.Context, u *domain.User) error
	// Update rewrites all mutable columns of the user's row, keyed by
	// telegram id.
	Update(ctx context.Context, u *domain.User) error
	// SetNextRun updates only next_run_at and updated_at. The sweep uses
	// this after a delivery so a pause or cadence change committed by a
	// command handler mid-sweep is never overwritten by a stale row.
	SetNextRun(ctx context.Context, telegramID string, next, updatedAt time.Time) error
	// ListDue returns every non-paused user with next_run_at <= asOf.
	// No ordering guarantee.
	ListDue(ctx context.Context, asOf time.Time) ([]domain.User, error)
	Close() error
}

package domain

import "time"

// User represents a registered chat and its reminder schedule.
type User struct {
	ID         int64
	TelegramID string
	ChatID     string
	Frequency  Frequency
	NextRunAt  *time.Time // UTC, nullable ("not yet scheduled")
	IsPaused   bool
	CreatedAt  time.Time // UTC
	UpdatedAt  time.Time // UTC
}

// Due reports whether the user should receive a reminder at t.
// Paused users are never due, regardless of how overdue NextRunAt is.
func (u *User) Due(t time.Time) bool {
	if u.IsPaused || u.NextRunAt == nil {
		return false
	}
	return !u.NextRunAt.After(t)
}

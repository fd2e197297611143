package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// Rand is the randomness needed by the schedule calculator and the catalog
// sampler. Production passes SystemRand; tests inject a fixed source.
type Rand interface {
	Intn(n int) int
}

// SystemRand draws from the process-wide math/rand source, which is safe
// for concurrent use by the command handlers and the sweep loop.
type SystemRand struct{}

func (SystemRand) Intn(n int) int { return rand.Intn(n) }

// NextRun computes the next reminder instant for a cadence, counting from
// "from" (registration time, cadence-change time, or last delivery time).
//
// The date offset is deterministic per cadence; the time of day is drawn
// uniformly from [08:00, 20:00) on every call so reminders spread out
// instead of firing for everyone at once. Seconds are zeroed.
func NextRun(f Frequency, from time.Time, r Rand) time.Time {
	var next time.Time
	switch f {
	case Daily:
		next = from.AddDate(0, 0, 1)
	case TwiceWeekly:
		// 3 or 4 days, averaging about twice a week.
		next = from.AddDate(0, 0, 3+r.Intn(2))
	case Weekly:
		next = from.AddDate(0, 0, 7)
	case Biweekly:
		next = from.AddDate(0, 0, 14)
	case Monthly:
		next = from.AddDate(0, 1, 0)
	default:
		next = from.AddDate(0, 0, 7)
	}

	hour := 8 + r.Intn(12)
	minute := r.Intn(60)
	return time.Date(next.Year(), next.Month(), next.Day(), hour, minute, 0, 0, next.Location())
}

// DescribeGap renders the distance to the next reminder for the status
// command ("tomorrow", "in 3 days", ...).
func DescribeGap(now, next time.Time) string {
	days := int(next.Sub(now) / (24 * time.Hour))

	switch {
	case days <= 0:
		return "later today"
	case days == 1:
		return "tomorrow"
	case days < 7:
		return fmt.Sprintf("in %d days", days)
	case days < 14:
		return "next week"
	case days < 30:
		return fmt.Sprintf("in %d weeks", (days+6)/7)
	default:
		return "next month"
	}
}

package domain

import "fmt"

// Frequency is the reminder cadence a user picks.
type Frequency string

const (
	Daily       Frequency = "daily"
	TwiceWeekly Frequency = "twice_weekly"
	Weekly      Frequency = "weekly"
	Biweekly    Frequency = "biweekly"
	Monthly     Frequency = "monthly"

	// DefaultFrequency is assigned on registration.
	DefaultFrequency = Weekly
)

// Frequencies lists all cadences in menu order.
func Frequencies() []Frequency {
	return []Frequency{Daily, TwiceWeekly, Weekly, Biweekly, Monthly}
}

var frequencyLabels = map[Frequency]string{
	Daily:       "Once a day",
	TwiceWeekly: "Twice a week",
	Weekly:      "Once a week",
	Biweekly:    "Every two weeks",
	Monthly:     "Once a month",
}

// Label returns the human-readable name of the cadence.
func (f Frequency) Label() string {
	if l, ok := frequencyLabels[f]; ok {
		return l
	}
	return string(f)
}

// ParseFrequency validates a raw cadence value (e.g. from callback data or
// a database row).
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if _, ok := frequencyLabels[f]; !ok {
		return "", fmt.Errorf("unknown frequency %q", s)
	}
	return f, nil
}

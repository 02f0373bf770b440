package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TimingPreference is a symbolic time of day used when a user has not given
// exact clock times.
type TimingPreference string

const (
	Morning TimingPreference = "morning"
	Noon    TimingPreference = "noon"
	Evening TimingPreference = "evening"
	Bedtime TimingPreference = "bedtime"
)

// ParseTimingPreference validates a symbolic slot name.
func ParseTimingPreference(s string) (TimingPreference, error) {
	switch TimingPreference(strings.ToLower(strings.TrimSpace(s))) {
	case Morning:
		return Morning, nil
	case Noon:
		return Noon, nil
	case Evening:
		return Evening, nil
	case Bedtime:
		return Bedtime, nil
	}
	return "", fmt.Errorf("unknown timing preference: %q", s)
}

// TimeOfDay is a clock time within one day, stored as minutes from midnight.
// Values above 24h are possible for schedules built from high frequencies and
// are kept as-is rather than wrapped.
type TimeOfDay struct {
	Minutes int
}

// TimeOfDayFromHM builds a TimeOfDay from hours and minutes.
func TimeOfDayFromHM(hour, minute int) TimeOfDay {
	return TimeOfDay{Minutes: hour*60 + minute}
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDayFromHM(h, m), nil
}

// Hour returns the hour component (may exceed 23, see TimeOfDay).
func (t TimeOfDay) Hour() int { return t.Minutes / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return t.Minutes % 60 }

// String renders "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Before reports whether t is earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool { return t.Minutes < other.Minutes }

// MarshalJSON encodes the time as "HH:MM".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes "HH:MM".
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

package calendar

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Day is the exclusive upper bound of a TimeOfDay.
const Day = 24 * time.Hour

// TimeOfDay is the offset from midnight, 0 <= t < 24h.
type TimeOfDay time.Duration

// Clock builds a TimeOfDay from hour, minute and second.
func Clock(hour, min, sec int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute + time.Duration(sec)*time.Second)
}

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS[.fraction]".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM[:SS]", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	var frac time.Duration
	if len(parts) == 3 {
		sec, err := strconv.ParseFloat(parts[2], 64)
		if err != nil || sec < 0 || sec >= 60 {
			return 0, fmt.Errorf("invalid second in %q", s)
		}
		frac = time.Duration(sec * float64(time.Second)).Round(time.Microsecond)
	}

	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + frac), nil
}

func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t)
}

// Valid reports whether t lies within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && time.Duration(t) < Day
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	if d != 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%06d", h, m, s, d/time.Microsecond)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(data []byte) error {
	parsed, err := ParseTimeOfDay(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time must be a string: %w", err)
	}
	return t.UnmarshalText([]byte(s))
}

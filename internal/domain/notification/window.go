// internal/domain/notification/window.go
package notification

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock offset from local midnight, second precision.
type TimeOfDay int

const secondsPerDay = 24 * 60 * 60

// NewTimeOfDay builds a TimeOfDay from its clock components.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// TimeOfDayOf drops the date part of t, keeping t's location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q: want HH:MM or HH:MM:SS", s)
	}
	limits := []int{23, 59, 59}
	vals := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > limits[i] {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
		vals[i] = v
	}
	return NewTimeOfDay(vals[0], vals[1], vals[2]), nil
}

func (t TimeOfDay) String() string {
	s := int(t) % secondsPerDay
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s%3600/60, s%60)
}

// TriggerWindow is the half-open interval [Start, End) checked once per scheduler tick.
type TriggerWindow struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (w TriggerWindow) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// Validate rejects empty or inverted windows. Windows never wrap past midnight.
func (w TriggerWindow) Validate() error {
	if w.End <= w.Start {
		return fmt.Errorf("trigger window %s is empty", w)
	}
	return nil
}

// Width reports how long the window stays open each day.
func (w TriggerWindow) Width() time.Duration {
	return time.Duration(w.End-w.Start) * time.Second
}

// InsideWindow reports whether now falls inside w. Only the time of day is compared.
func InsideWindow(now TimeOfDay, w TriggerWindow) bool {
	return w.Start <= now && now < w.End
}

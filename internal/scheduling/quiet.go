package scheduling

import (
	"fmt"
	"time"

	"github.com/jonathan/viral-factory/internal/errs"
)

// QuietHours is a daily time-of-day window, in UTC, during which
// auto-publishing is deferred. A window whose start is after its end
// wraps across midnight. The zero value is disabled.
type QuietHours struct {
	start int // minutes since midnight
	end   int
	set   bool
}

// ParseQuietHours builds a window from "HH:MM" bounds. Equal bounds
// disable the window.
func ParseQuietHours(start, end string) (QuietHours, error) {
	s, err := parseClock(start)
	if err != nil {
		return QuietHours{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return QuietHours{}, err
	}
	if s == e {
		return QuietHours{}, nil
	}
	return QuietHours{start: s, end: e, set: true}, nil
}

func parseClock(v string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, &errs.ConfigurationError{Message: fmt.Sprintf("invalid quiet hours bound %q", v)}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, &errs.ConfigurationError{Message: fmt.Sprintf("quiet hours bound %q out of range", v)}
	}
	return h*60 + m, nil
}

// Contains reports whether t falls inside the window.
func (q QuietHours) Contains(t time.Time) bool {
	if !q.set {
		return false
	}
	minute := t.UTC().Hour()*60 + t.UTC().Minute()
	if q.start < q.end {
		return minute >= q.start && minute < q.end
	}
	// Wrapping window, e.g. 23:00-07:00.
	return minute >= q.start || minute < q.end
}

// NextEnd returns the first instant at or after t when the window ends.
// Calling it with t outside the window returns the next end anyway.
func (q QuietHours) NextEnd(t time.Time) time.Time {
	u := t.UTC()
	end := time.Date(u.Year(), u.Month(), u.Day(), q.end/60, q.end%60, 0, 0, time.UTC)
	if !end.After(u) {
		end = end.Add(24 * time.Hour)
	}
	return end
}

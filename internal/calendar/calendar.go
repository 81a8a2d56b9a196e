// Package calendar buckets instants into local calendar days and weeks.
//
// Every function works in the process local zone (time.Local, set via TZ). Clients in a
// different zone compute different day and week boundaries; no per-user zone is modeled.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

// DefaultWeekStart is index 0 of the label table.
const DefaultWeekStart = time.Sunday

var dayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DayStart returns local midnight of t's local calendar day.
func DayStart(t time.Time) time.Time {
	lt := t.In(time.Local)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.Local)
}

// Anchor keeps t's own year, month and day and moves them to local midnight. Use it for
// values that carry a date in a foreign zone, e.g. a Postgres DATE decoded as UTC.
func Anchor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// StartOfWeek steps back from ref's calendar day to the most recent first weekday, inclusive.
func StartOfWeek(ref time.Time, first time.Weekday) time.Time {
	day := DayStart(ref)
	back := (int(day.Weekday()) - int(first) + 7) % 7
	return day.AddDate(0, 0, -back)
}

func DaysInWeek(start time.Time) [7]time.Time {
	var out [7]time.Time
	copy(out[:], Days(start, 7))
	return out
}

// Days returns n consecutive calendar days beginning at start's day.
func Days(start time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	first := DayStart(start)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = first.AddDate(0, 0, i)
	}
	return out
}

func DayKey(t time.Time) string {
	return t.In(time.Local).Format(DayLayout)
}

func DayLabel(t time.Time) string {
	return dayLabels[DayStart(t).Weekday()]
}

// ParseDay parses a "2006-01-02" string as a local calendar day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// IsAfterDay reports whether a's calendar day is strictly later than b's.
func IsAfterDay(a, b time.Time) bool {
	return DayStart(a).After(DayStart(b))
}

// ParseWeekday accepts full or three-letter English names, case-insensitive.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of a due date.
const DateLayout = time.DateOnly

// ParseDate parses a calendar date. It accepts YYYY-MM-DD and RFC 3339
// timestamps, keeping only the UTC calendar day of the latter.
// The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return StartOfDay(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// StartOfDay truncates t to midnight of its UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a due date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// OverdueCutoff returns the first calendar date that is not overdue at now.
// A due date is overdue when midnight of that date is strictly before now,
// so a task due today becomes overdue as soon as the day has started.
func OverdueCutoff(now time.Time) time.Time {
	today := StartOfDay(now)
	if now.UTC().Equal(today) {
		return today
	}
	return today.AddDate(0, 0, 1)
}

package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ParseClock converts a HH:MM wall-clock string into a minute-of-day value
// in [0, 1439]. Strings outside the 24-hour clock are rejected.
func ParseClock(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return hour*60 + minute, nil
}

// FormatClock renders a minute-of-day value back to HH:MM.
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// ParseWeekday parses a weekday parameter into an integer in [1, 7]
// (1=Monday..7=Sunday).
func ParseWeekday(s string) (int, error) {
	d, err := strconv.Atoi(s)
	if err != nil || d < 1 || d > 7 {
		return 0, fmt.Errorf("invalid weekday %q, expected 1-7", s)
	}
	return d, nil
}

// ParseDate parses a YYYY-MM-DD parameter into a local calendar date at
// midnight. Returns nil on malformed input so the caller can fall back to
// today.
func ParseDate(s string) *time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

// ParseDateTime parses a timestamp parameter. The calendar UI sends local
// wall-clock strings without a zone; RFC 3339 is accepted as well for API
// clients.
func ParseDateTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02T15:04", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q, expected YYYY-MM-DDTHH:MM", s)
}

// ISOWeekday returns the ISO weekday of t (1=Monday..7=Sunday).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// MinuteOfDay returns the wall-clock minute-of-day of t.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

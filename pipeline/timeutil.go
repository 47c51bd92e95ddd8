package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayKeyFormat is the local-calendar key used for daily idempotence checks.
const DayKeyFormat = "2006-01-02"

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayKey encodes t as YYYY-MM-DD in its own location. The key is local time
// on purpose: "today" means the user's today, not UTC's.
func DayKey(t time.Time) string {
	return t.Format(DayKeyFormat)
}

// AddDays shifts t by n calendar days, preserving the wall-clock time.
// Calendar arithmetic (not 24h multiples) keeps results stable across DST.
func AddDays(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+n, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// AtClock returns t's calendar day at the given clock time, seconds zeroed.
func AtClock(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// ParseClock parses a 24-hour "HH:MM" string.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock time %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock time %q out of range", s)
	}
	return hour, minute, nil
}

// SanitizeClock normalizes a clock string to zero-padded 24-hour "HH:MM".
// Malformed input falls back to the supplied default instead of erroring;
// settings blobs from old clients are allowed to be sloppy here.
func SanitizeClock(s, fallback string) string {
	hour, minute, err := ParseClock(s)
	if err != nil {
		return fallback
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// NextWeekday returns the number of days from t until the next occurrence
// of target, strictly in the future: when t already falls on target the
// answer is a full week, never zero.
func NextWeekday(t time.Time, target time.Weekday) int {
	days := (int(target) - int(t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return days
}

// DaysBetween returns the absolute whole-day distance between the calendar
// days of a and b, ignoring clock time.
func DaysBetween(a, b time.Time) int {
	da := StartOfDay(a)
	db := StartOfDay(b)
	// Rounding absorbs the 23h/25h days around DST transitions.
	diff := int(db.Sub(da).Round(24*time.Hour).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff
}

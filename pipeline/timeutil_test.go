package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeClock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "08:30", "08:30"},
		{"needs zero padding", "8:30", "08:30"},
		{"midnight", "0:0", "00:00"},
		{"end of day", "23:59", "23:59"},
		{"hour out of range", "24:00", "08:30"},
		{"minute out of range", "10:60", "08:30"},
		{"garbage", "soon", "08:30"},
		{"empty", "", "08:30"},
		{"missing minute", "10", "08:30"},
		{"negative", "-1:30", "08:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeClock(tt.input, "08:30")
			assert.Equal(t, tt.want, got)

			// Sanitizing is idempotent on its own output.
			assert.Equal(t, got, SanitizeClock(got, "08:30"))
		})
	}
}

func TestDayKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 23:30 local on Jan 1 is already Jan 1 13:30 UTC; the key must still
	// say Jan 1, because "today" is the user's today.
	ts := time.Date(2024, 1, 1, 23, 30, 0, 0, loc)
	assert.Equal(t, "2024-01-01", DayKey(ts))
}

func TestAddDays(t *testing.T) {
	base := time.Date(2024, 1, 30, 9, 15, 42, 0, time.UTC)

	got := AddDays(base, 3)
	assert.Equal(t, time.Date(2024, 2, 2, 9, 15, 42, 0, time.UTC), got)

	got = AddDays(base, -30)
	assert.Equal(t, time.Date(2023, 12, 31, 9, 15, 42, 0, time.UTC), got)

	// Wall clock is preserved across a month boundary and leap day.
	got = AddDays(time.Date(2024, 2, 28, 8, 30, 0, 0, time.UTC), 1)
	assert.Equal(t, time.Date(2024, 2, 29, 8, 30, 0, 0, time.UTC), got)
}

func TestNextWeekday(t *testing.T) {
	monday := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Monday, monday.Weekday())

	// Same weekday is a full week out, never zero.
	assert.Equal(t, 7, NextWeekday(monday, time.Monday))
	assert.Equal(t, 1, NextWeekday(monday, time.Tuesday))
	assert.Equal(t, 6, NextWeekday(monday, time.Sunday))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 1, 12, 0, 1, 0, 0, time.UTC)

	// Clock time is ignored; only calendar days count.
	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, 2, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2024, 6, 15, 18, 45, 12, 999, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
}

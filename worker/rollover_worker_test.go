package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"leadpulse/models"
)

func TestDueForRollover(t *testing.T) {
	day := func(hour, min int) time.Time {
		return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name    string
		lastKey string
		now     time.Time
		want    bool
	}{
		{"before cutoff", "", day(22, 30), false},
		{"one minute before cutoff", "", day(23, 58), false},
		{"exactly at cutoff", "", day(23, 59), true},
		{"already ran today", "2026-03-10", day(23, 59), false},
		{"ran yesterday", "2026-03-09", day(23, 59), true},
		{"ran yesterday but too early today", "2026-03-09", day(8, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dueForRollover(tt.lastKey, tt.now))
		})
	}
}

func TestDueForRolloverIsIdempotentPerDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 59, 30, 0, time.UTC)
	assert.True(t, dueForRollover("2026-03-09", now))

	// After the run stamps today's key, the same evening never re-triggers.
	assert.False(t, dueForRollover("2026-03-10", now))
	later := now.Add(30 * time.Second)
	assert.False(t, dueForRollover("2026-03-10", later))
}

func TestUserLocation(t *testing.T) {
	assert.Equal(t, time.UTC, userLocation(&models.User{Timezone: ""}))
	assert.Equal(t, time.UTC, userLocation(&models.User{Timezone: "Not/AZone"}))

	loc := userLocation(&models.User{Timezone: "Europe/Berlin"})
	assert.Equal(t, "Europe/Berlin", loc.String())
}

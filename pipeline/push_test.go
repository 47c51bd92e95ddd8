package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputePushedAt_AddHours(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 17, 42, 500, time.UTC)
	preset := PushPreset{Behavior: PushBehavior{Kind: PushAddHours, Hours: 4}}

	got := ComputePushedAt(now, preset)
	assert.Equal(t, time.Date(2024, 1, 1, 13, 17, 0, 0, time.UTC), got)
}

func TestComputePushedAt_NextTime(t *testing.T) {
	preset := PushPreset{Behavior: PushBehavior{Kind: PushNextTime, Time: "18:00"}}

	// Before the slot: today.
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	got := ComputePushedAt(now, preset)
	assert.Equal(t, time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC), got)

	// Exactly at the slot: not strictly after, so tomorrow.
	now = time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)
	got = ComputePushedAt(now, preset)
	assert.Equal(t, time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC), got)

	// Past the slot: tomorrow.
	now = time.Date(2024, 1, 1, 21, 30, 0, 0, time.UTC)
	got = ComputePushedAt(now, preset)
	assert.Equal(t, time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC), got)
}

func TestComputePushedAt_NextWeekdayTime(t *testing.T) {
	monday := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Monday, monday.Weekday())

	// Today matches the target weekday: always a full week out, never today,
	// regardless of whether the clock time has passed yet.
	preset := PushPreset{Behavior: PushBehavior{Kind: PushNextWeekdayTime, Weekday: int(time.Monday), Time: "08:30"}}
	got := ComputePushedAt(monday, preset)
	assert.Equal(t, time.Date(2024, 1, 8, 8, 30, 0, 0, time.UTC), got)
	assert.NotEqual(t, DayKey(monday), DayKey(got))

	early := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	got = ComputePushedAt(early, preset)
	assert.Equal(t, time.Date(2024, 1, 8, 8, 30, 0, 0, time.UTC), got)

	// A different weekday lands within the coming week.
	preset.Behavior.Weekday = int(time.Thursday)
	got = ComputePushedAt(monday, preset)
	assert.Equal(t, time.Date(2024, 1, 4, 8, 30, 0, 0, time.UTC), got)
}

func TestComputePushedAt_Deterministic(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 17, 42, 0, time.UTC)
	for _, preset := range defaultPresets() {
		a := ComputePushedAt(now, preset)
		b := ComputePushedAt(now, preset)
		assert.Equal(t, a, b, "preset %q must be deterministic", preset.Label)
		assert.Zero(t, a.Second())
		assert.Zero(t, a.Nanosecond())
	}
}

func TestComputePushedAt_UnknownKind(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 17, 42, 0, time.UTC)
	preset := PushPreset{Behavior: PushBehavior{Kind: "warp"}}

	// Fails soft: seconds dropped, otherwise unmoved.
	got := ComputePushedAt(now, preset)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 17, 0, 0, time.UTC), got)
}

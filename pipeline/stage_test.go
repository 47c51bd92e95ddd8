package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeNextActionAt_SameDayEdge(t *testing.T) {
	// Past the day start: a zero-delta follow-up rolls to tomorrow.
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	got := ComputeNextActionAt(now, 0, "08:30")
	assert.Equal(t, time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC), got)

	// Before the day start: today still works.
	now = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	got = ComputeNextActionAt(now, 0, "08:30")
	assert.Equal(t, time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC), got)

	// Exactly at the day start counts as not yet past.
	now = time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)
	got = ComputeNextActionAt(now, 0, "08:30")
	assert.Equal(t, time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC), got)
}

func TestComputeNextActionAt_NonZeroDelta(t *testing.T) {
	// With a real delta the same-day edge never applies, even when the
	// current clock time is past the day start.
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	got := ComputeNextActionAt(now, 2, "08:30")
	assert.Equal(t, time.Date(2024, 1, 3, 8, 30, 0, 0, time.UTC), got)
}

func TestComputeNextActionAt_BadDayStart(t *testing.T) {
	now := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	got := ComputeNextActionAt(now, 1, "not a time")
	assert.Equal(t, time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC), got)
}

func TestComputeOffsetDeltaDays(t *testing.T) {
	s := DefaultSettings() // offsets 0/2/7/15/30

	tests := []struct {
		name    string
		current string
		next    string
		want    int
	}{
		{"first to second", "stage_1", "stage_2", 2},
		{"second to third", "stage_2", "stage_3", 5},
		{"same stage", "stage_3", "stage_3", 0},
		{"backwards clamps to zero", "stage_4", "stage_1", 0},
		{"unknown current", "bogus", "stage_2", 0},
		{"unknown next", "stage_1", "bogus", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeOffsetDeltaDays(s, tt.current, tt.next)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
		})
	}
}

func TestNextStage(t *testing.T) {
	s := DefaultSettings()

	for i := 0; i < len(s.Stages)-1; i++ {
		next := NextStage(s, s.Stages[i].ID)
		require.NotNil(t, next)
		assert.Equal(t, s.Stages[i+1].ID, next.ID)
	}

	// Last stage and unknown ids both signal "pipeline complete".
	assert.Nil(t, NextStage(s, s.Stages[len(s.Stages)-1].ID))
	assert.Nil(t, NextStage(s, "bogus"))
}

func TestNormalizeLeadState(t *testing.T) {
	assert.Equal(t, StateOpen, NormalizeLeadState(""))
	assert.Equal(t, StateOpen, NormalizeLeadState("something else"))
	assert.Equal(t, StateClosedWon, NormalizeLeadState("closed_won"))
	assert.Equal(t, StateClosedLost, NormalizeLeadState("closed_lost"))
	assert.Equal(t, StateDropOut, NormalizeLeadState("drop_out"))

	assert.False(t, StateOpen.Closed())
	assert.True(t, StateDropOut.Closed())
}

func TestComputeInitialNextActionAt_Priority(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s := DefaultSettings()

	minutes, hours, days := 45, 3, 4
	s.Stages[0].FollowUpMinutes = &minutes
	s.Stages[0].FollowUpHours = &hours
	s.Stages[0].FollowUpDays = &days

	// Minutes win over everything else.
	got := ComputeInitialNextActionAt(s, "stage_1", now)
	require.NotNil(t, got)
	assert.Equal(t, now.Add(45*time.Minute), *got)

	// Then hours.
	s.Stages[0].FollowUpMinutes = nil
	got = ComputeInitialNextActionAt(s, "stage_1", now)
	require.NotNil(t, got)
	assert.Equal(t, now.Add(3*time.Hour), *got)

	// Then the day-based override, anchored to the day start.
	s.Stages[0].FollowUpHours = nil
	got = ComputeInitialNextActionAt(s, "stage_1", now)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC), *got)

	// Finally the legacy stage offset.
	s.Stages[0].FollowUpDays = nil
	got = ComputeInitialNextActionAt(s, "stage_2", now)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 3, 8, 30, 0, 0, time.UTC), *got)

	// Unknown stage: no auto-schedule.
	assert.Nil(t, ComputeInitialNextActionAt(s, "bogus", now))
}

func TestStageAdvanceScenario(t *testing.T) {
	// End-to-end timing check: stages at offsets 0/2/7, day start 08:30.
	// A lead on s1 completing at 10:00 on Jan 1 lands on s2 at Jan 3 08:30.
	s := Settings{
		DayStartTime: "08:30",
		Stages: []Stage{
			{ID: "s1", OffsetDays: 0},
			{ID: "s2", OffsetDays: 2},
			{ID: "s3", OffsetDays: 7},
		},
	}
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	next := NextStage(s, "s1")
	require.NotNil(t, next)
	assert.Equal(t, "s2", next.ID)

	delta := ComputeOffsetDeltaDays(s, "s1", next.ID)
	assert.Equal(t, 2, delta)

	got := ComputeNextActionAt(now, delta, s.DayStartTime)
	assert.Equal(t, time.Date(2024, 1, 3, 8, 30, 0, 0, time.UTC), got)
}

package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSteps(t *testing.T) {
	steps := []StepSpec{
		{Order: 2, DelayDays: 3, ToEmail: "c@example.com"},
		{Order: 0, DelayDays: 5, ToEmail: "a@example.com"},
		{Order: 1, DelayDays: -2, ToEmail: "b@example.com"},
	}

	got := NormalizeSteps(steps)
	require.Len(t, got, 3)

	// Explicit order wins over slice position, then gets re-indexed.
	assert.Equal(t, "a@example.com", got[0].ToEmail)
	assert.Equal(t, "b@example.com", got[1].ToEmail)
	assert.Equal(t, "c@example.com", got[2].ToEmail)
	for i, step := range got {
		assert.Equal(t, i, step.Order)
	}

	// First delay forced to zero, negatives clamped.
	assert.Equal(t, 0, got[0].DelayDays)
	assert.Equal(t, 0, got[1].DelayDays)
	assert.Equal(t, 3, got[2].DelayDays)

	// Input untouched.
	assert.Equal(t, 5, steps[1].DelayDays)
}

func TestStepDates_Cascade(t *testing.T) {
	start := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	steps := []StepSpec{
		{Order: 0, DelayDays: 0},
		{Order: 1, DelayDays: 2},
		{Order: 2, DelayDays: 3},
	}

	dates := StepDates(start, steps)
	require.Len(t, dates, 3)

	// Delays compound off the previous step's computed date, not off the
	// start: [0,2,3] lands on [D, D+2, D+5].
	assert.Equal(t, start, dates[0])
	assert.Equal(t, AddDays(start, 2), dates[1])
	assert.Equal(t, AddDays(start, 5), dates[2])
}

func TestStepDates_Empty(t *testing.T) {
	assert.Empty(t, StepDates(time.Now(), nil))
}

func TestValidStepStatus(t *testing.T) {
	assert.True(t, ValidStepStatus(StepStatusOpen))
	assert.True(t, ValidStepStatus(StepStatusCompleted))
	assert.True(t, ValidStepStatus(StepStatusSkipped))
	assert.False(t, ValidStepStatus("done"))
	assert.False(t, ValidStepStatus(""))
}

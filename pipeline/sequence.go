package pipeline

import (
	"sort"
	"time"
)

// StepSpec is the caller-supplied description of one outreach sequence
// step, before normalization.
type StepSpec struct {
	Order     int
	DelayDays int
	ToEmail   string
	Template  string
}

// NormalizeSteps puts steps into canonical form: sorted by their explicit
// Order field (which wins over slice position), delays clamped to zero or
// more, and the first step's delay forced to zero so it always fires at the
// sequence start date.
func NormalizeSteps(steps []StepSpec) []StepSpec {
	out := make([]StepSpec, len(steps))
	copy(out, steps)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})

	for i := range out {
		out[i].Order = i
		if out[i].DelayDays < 0 {
			out[i].DelayDays = 0
		}
	}
	if len(out) > 0 {
		out[0].DelayDays = 0
	}
	return out
}

// StepDates computes the absolute date of every step. Delays cascade: each
// step is offset from the previous step's computed date, not from the
// sequence start, so delays [0,2,3] from day D land on [D, D+2, D+5].
func StepDates(startDate time.Time, steps []StepSpec) []time.Time {
	dates := make([]time.Time, len(steps))
	current := startDate
	for i, step := range steps {
		current = AddDays(current, step.DelayDays)
		dates[i] = current
	}
	return dates
}

// Step status values for a sequence step.
const (
	StepStatusOpen      = "open"
	StepStatusCompleted = "completed"
	StepStatusSkipped   = "skipped"
)

// ValidStepStatus reports whether s is one of the allowed step statuses.
func ValidStepStatus(s string) bool {
	return s == StepStatusOpen || s == StepStatusCompleted || s == StepStatusSkipped
}

package pipeline

import "time"

// LeadState is the normalized lifecycle state of a lead.
type LeadState string

const (
	StateOpen       LeadState = "open"
	StateClosedWon  LeadState = "closed_won"
	StateClosedLost LeadState = "closed_lost"
	StateDropOut    LeadState = "drop_out"
)

// NormalizeLeadState maps free-text state values into the closed set.
// Anything unrecognized (including empty) is treated as open.
func NormalizeLeadState(s string) LeadState {
	switch LeadState(s) {
	case StateClosedWon:
		return StateClosedWon
	case StateClosedLost:
		return StateClosedLost
	case StateDropOut:
		return StateDropOut
	default:
		return StateOpen
	}
}

// Closed reports whether the state is a terminal one.
func (s LeadState) Closed() bool {
	return s != StateOpen
}

// ComputeNextActionAt schedules the next action deltaDays calendar days
// after base, at the configured day-start clock time.
//
// When deltaDays is zero and base is already past the day start, the result
// rolls forward one extra day so a "today" follow-up is never scheduled in
// the past relative to the day-start cutoff.
func ComputeNextActionAt(base time.Time, deltaDays int, dayStart string) time.Time {
	hour, minute, err := ParseClock(dayStart)
	if err != nil {
		hour, minute, _ = ParseClock(DefaultDayStart)
	}

	target := AtClock(AddDays(base, deltaDays), hour, minute)
	if deltaDays == 0 && base.After(target) {
		target = AddDays(target, 1)
	}
	return target
}

// ComputeOffsetDeltaDays returns how many days separate the current stage's
// offset from the next stage's offset. Never negative; unknown stage ids
// fail soft to zero.
func ComputeOffsetDeltaDays(s Settings, currentStageID, nextStageID string) int {
	current := s.StageByID(currentStageID)
	next := s.StageByID(nextStageID)
	if current == nil || next == nil {
		return 0
	}
	delta := next.OffsetDays - current.OffsetDays
	if delta < 0 {
		return 0
	}
	return delta
}

// NextStage returns the stage following stageID in pipeline order, or nil
// at the last stage (pipeline complete) and for unknown ids.
func NextStage(s Settings, stageID string) *Stage {
	for i := range s.Stages {
		if s.Stages[i].ID == stageID {
			if i+1 < len(s.Stages) {
				return &s.Stages[i+1]
			}
			return nil
		}
	}
	return nil
}

// ComputeInitialNextActionAt resolves the follow-up moment for a lead that
// just entered stageID, honoring the per-stage override priority: minutes,
// then hours, then days, then the legacy stage offset. Returns nil for an
// unknown stage so the caller can skip auto-scheduling.
func ComputeInitialNextActionAt(s Settings, stageID string, now time.Time) *time.Time {
	stage := s.StageByID(stageID)
	if stage == nil {
		return nil
	}

	if stage.FollowUpMinutes != nil {
		t := now.Add(time.Duration(*stage.FollowUpMinutes) * time.Minute).Truncate(time.Minute)
		return &t
	}
	if stage.FollowUpHours != nil {
		t := now.Add(time.Duration(*stage.FollowUpHours) * time.Hour).Truncate(time.Minute)
		return &t
	}
	days := stage.OffsetDays
	if stage.FollowUpDays != nil {
		days = *stage.FollowUpDays
	}
	t := ComputeNextActionAt(now, days, s.DayStartTime)
	return &t
}

package pipeline

import "time"

// ComputePushedAt resolves a push preset against now and returns the new
// next-action timestamp. Pure and deterministic: same now and preset, same
// answer. Seconds and fractions are always zeroed.
func ComputePushedAt(now time.Time, preset PushPreset) time.Time {
	switch preset.Behavior.Kind {
	case PushAddHours:
		t := now.Add(time.Duration(preset.Behavior.Hours) * time.Hour)
		return AtClock(t, t.Hour(), t.Minute())

	case PushNextTime:
		hour, minute, err := ParseClock(preset.Behavior.Time)
		if err != nil {
			hour, minute, _ = ParseClock(DefaultDayStart)
		}
		t := AtClock(now, hour, minute)
		if !t.After(now) {
			t = AddDays(t, 1)
		}
		return t

	case PushNextWeekdayTime:
		hour, minute, err := ParseClock(preset.Behavior.Time)
		if err != nil {
			hour, minute, _ = ParseClock(DefaultDayStart)
		}
		// Today never counts, even when it matches the target weekday.
		days := NextWeekday(now, time.Weekday(preset.Behavior.Weekday))
		return AtClock(AddDays(now, days), hour, minute)

	default:
		// Unknown preset behavior fails soft: no reschedule movement.
		return AtClock(now, now.Hour(), now.Minute())
	}
}

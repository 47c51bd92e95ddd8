package pipeline

import (
	"encoding/json"
	"fmt"
)

// DefaultDayStart is the clock time treated as the earliest "today" when
// scheduling a next action.
const DefaultDayStart = "08:30"

// PresetSlots is the fixed number of push preset slots stored with the
// pipeline settings.
const PresetSlots = 5

// StageTemplate is one email template owned by a pipeline stage.
type StageTemplate struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Order        int    `json:"order"`
	SubjectText  string `json:"subjectText"`
	IntroText    string `json:"introText"`
	BodyText     string `json:"bodyText"`
	OutroText    string `json:"outroText"`
	PopulateName bool   `json:"populateName"`
}

// Stage is one step of the follow-up pipeline. Stages are ordered; "next
// stage" is simply the next slice element.
type Stage struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	OffsetDays int    `json:"offsetDays"`

	// Optional per-stage overrides for the initial follow-up delay of a
	// freshly created lead. Resolved in order minutes, hours, days, with
	// OffsetDays as the legacy fallback.
	FollowUpMinutes *int `json:"followUpMinutes,omitempty"`
	FollowUpHours   *int `json:"followUpHours,omitempty"`
	FollowUpDays    *int `json:"followUpDays,omitempty"`

	Templates []StageTemplate `json:"templates"`

	// Legacy documents carried a single template inline on the stage.
	// Kept only so NormalizeSettings can migrate them; never written back.
	LegacySubject *string `json:"subjectText,omitempty"`
	LegacyIntro   *string `json:"introText,omitempty"`
	LegacyBody    *string `json:"bodyText,omitempty"`
	LegacyOutro   *string `json:"outroText,omitempty"`
}

// PushKind tags a PushBehavior.
type PushKind string

const (
	PushAddHours        PushKind = "addHours"
	PushNextTime        PushKind = "nextTime"
	PushNextWeekdayTime PushKind = "nextWeekdayTime"
)

// PushBehavior describes how a push preset reschedules a lead. Exactly one
// shape is meaningful per Kind: Hours for addHours, Time for nextTime,
// Weekday+Time for nextWeekdayTime (0=Sunday..6=Saturday).
type PushBehavior struct {
	Kind    PushKind `json:"type"`
	Hours   int      `json:"hours,omitempty"`
	Time    string   `json:"time,omitempty"`
	Weekday int      `json:"weekday,omitempty"`
}

// PushPreset is one of the fixed preset slots offered for rescheduling.
type PushPreset struct {
	Label    string       `json:"label"`
	Behavior PushBehavior `json:"behavior"`
}

// Settings is the fully normalized pipeline configuration, one document per
// user account.
type Settings struct {
	DayStartTime string       `json:"dayStartTime"`
	Stages       []Stage      `json:"stages"`
	PushPresets  []PushPreset `json:"pushPresets"`
}

// DefaultSettings returns the hard-coded pipeline used when an account has
// never saved one: five stages at 0/2/7/15/30 days, day start 08:30.
func DefaultSettings() Settings {
	labels := []string{"First touch", "Quick follow-up", "Week check-in", "Second check-in", "Long-term nurture"}
	offsets := []int{0, 2, 7, 15, 30}

	stages := make([]Stage, len(offsets))
	for i := range offsets {
		stages[i] = Stage{
			ID:         fmt.Sprintf("stage_%d", i+1),
			Label:      labels[i],
			OffsetDays: offsets[i],
			Templates:  []StageTemplate{defaultTemplate(i + 1)},
		}
	}

	return Settings{
		DayStartTime: DefaultDayStart,
		Stages:       stages,
		PushPresets:  defaultPresets(),
	}
}

func defaultTemplate(stageNum int) StageTemplate {
	return StageTemplate{
		ID:           fmt.Sprintf("tpl_%d_1", stageNum),
		Name:         "Default",
		Order:        0,
		SubjectText:  "Following up",
		IntroText:    "Hi",
		BodyText:     "Just checking in to see where things stand.",
		OutroText:    "Best regards",
		PopulateName: true,
	}
}

func defaultPresets() []PushPreset {
	return []PushPreset{
		{Label: "In 1 hour", Behavior: PushBehavior{Kind: PushAddHours, Hours: 1}},
		{Label: "In 4 hours", Behavior: PushBehavior{Kind: PushAddHours, Hours: 4}},
		{Label: "Next morning", Behavior: PushBehavior{Kind: PushNextTime, Time: "08:30"}},
		{Label: "Next evening", Behavior: PushBehavior{Kind: PushNextTime, Time: "18:00"}},
		{Label: "Next Monday", Behavior: PushBehavior{Kind: PushNextWeekdayTime, Weekday: 1, Time: "08:30"}},
	}
}

// NormalizeSettings turns a raw settings document of unknown shape into a
// fully defaulted Settings. It never fails: an unreadable document yields
// the defaults, and every field is individually clamped or defaulted so
// legacy blobs from old clients stay usable.
func NormalizeSettings(raw []byte) Settings {
	if len(raw) == 0 {
		return DefaultSettings()
	}

	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultSettings()
	}

	s.DayStartTime = SanitizeClock(s.DayStartTime, DefaultDayStart)

	if len(s.Stages) == 0 {
		s.Stages = DefaultSettings().Stages
	}
	for i := range s.Stages {
		normalizeStage(&s.Stages[i], i)
	}

	s.PushPresets = normalizePresets(s.PushPresets)
	return s
}

func normalizeStage(st *Stage, index int) {
	if st.ID == "" {
		st.ID = fmt.Sprintf("stage_%d", index+1)
	}
	if st.Label == "" {
		st.Label = fmt.Sprintf("Stage %d", index+1)
	}
	if st.OffsetDays < 0 {
		st.OffsetDays = 0
	}
	if st.FollowUpMinutes != nil && *st.FollowUpMinutes < 0 {
		st.FollowUpMinutes = nil
	}
	if st.FollowUpHours != nil && *st.FollowUpHours < 0 {
		st.FollowUpHours = nil
	}
	if st.FollowUpDays != nil && *st.FollowUpDays < 0 {
		st.FollowUpDays = nil
	}

	if len(st.Templates) == 0 {
		// Migrate the legacy inline template, or synthesize a blank one.
		tpl := defaultTemplate(index + 1)
		if st.LegacySubject != nil {
			tpl.SubjectText = *st.LegacySubject
		}
		if st.LegacyIntro != nil {
			tpl.IntroText = *st.LegacyIntro
		}
		if st.LegacyBody != nil {
			tpl.BodyText = *st.LegacyBody
		}
		if st.LegacyOutro != nil {
			tpl.OutroText = *st.LegacyOutro
		}
		st.Templates = []StageTemplate{tpl}
	}
	for j := range st.Templates {
		if st.Templates[j].ID == "" {
			st.Templates[j].ID = fmt.Sprintf("tpl_%d_%d", index+1, j+1)
		}
		if st.Templates[j].Name == "" {
			st.Templates[j].Name = fmt.Sprintf("Template %d", j+1)
		}
		st.Templates[j].Order = j
	}

	st.LegacySubject = nil
	st.LegacyIntro = nil
	st.LegacyBody = nil
	st.LegacyOutro = nil
}

// normalizePresets forces the preset list to exactly PresetSlots entries,
// replacing missing or malformed slots with their default.
func normalizePresets(presets []PushPreset) []PushPreset {
	defaults := defaultPresets()
	out := make([]PushPreset, PresetSlots)
	for i := 0; i < PresetSlots; i++ {
		if i < len(presets) && validPreset(presets[i]) {
			out[i] = presets[i]
			out[i].Behavior = sanitizeBehavior(out[i].Behavior)
			if out[i].Label == "" {
				out[i].Label = defaults[i].Label
			}
		} else {
			out[i] = defaults[i]
		}
	}
	return out
}

func validPreset(p PushPreset) bool {
	switch p.Behavior.Kind {
	case PushAddHours:
		return p.Behavior.Hours >= 1
	case PushNextTime:
		_, _, err := ParseClock(p.Behavior.Time)
		return err == nil
	case PushNextWeekdayTime:
		if p.Behavior.Weekday < 0 || p.Behavior.Weekday > 6 {
			return false
		}
		_, _, err := ParseClock(p.Behavior.Time)
		return err == nil
	default:
		return false
	}
}

func sanitizeBehavior(b PushBehavior) PushBehavior {
	if b.Kind == PushNextTime || b.Kind == PushNextWeekdayTime {
		b.Time = SanitizeClock(b.Time, DefaultDayStart)
	}
	return b
}

// StageByID returns the stage with the given id, or nil when unknown.
func (s Settings) StageByID(id string) *Stage {
	for i := range s.Stages {
		if s.Stages[i].ID == id {
			return &s.Stages[i]
		}
	}
	return nil
}

// Marshal serializes the settings back into their stored document form.
func (s Settings) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

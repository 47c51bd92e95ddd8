package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	require.Len(t, s.Stages, 5)
	assert.Equal(t, "08:30", s.DayStartTime)

	wantOffsets := []int{0, 2, 7, 15, 30}
	for i, stage := range s.Stages {
		assert.Equal(t, wantOffsets[i], stage.OffsetDays)
		assert.NotEmpty(t, stage.ID)
		assert.NotEmpty(t, stage.Label)
		require.Len(t, stage.Templates, 1)
	}

	require.Len(t, s.PushPresets, PresetSlots)
}

func TestNormalizeSettings_EmptyAndGarbage(t *testing.T) {
	assert.Equal(t, DefaultSettings(), NormalizeSettings(nil))
	assert.Equal(t, DefaultSettings(), NormalizeSettings([]byte("")))
	assert.Equal(t, DefaultSettings(), NormalizeSettings([]byte("not json at all")))
	assert.Equal(t, DefaultSettings(), NormalizeSettings([]byte(`{"stages": "oops"}`)))
}

func TestNormalizeSettings_LegacyStageTemplate(t *testing.T) {
	raw := []byte(`{
		"dayStartTime": "9:5",
		"stages": [
			{"id": "s1", "label": "First", "offsetDays": 0,
			 "subjectText": "Old subject", "bodyText": "Old body"},
			{"offsetDays": -3}
		]
	}`)

	s := NormalizeSettings(raw)

	assert.Equal(t, "09:05", s.DayStartTime)
	require.Len(t, s.Stages, 2)

	// Legacy inline template migrated into a synthesized templates list.
	first := s.Stages[0]
	require.Len(t, first.Templates, 1)
	assert.Equal(t, "Old subject", first.Templates[0].SubjectText)
	assert.Equal(t, "Old body", first.Templates[0].BodyText)
	assert.Nil(t, first.LegacySubject)

	// Missing id/label synthesized, negative offset clamped.
	second := s.Stages[1]
	assert.Equal(t, "stage_2", second.ID)
	assert.NotEmpty(t, second.Label)
	assert.Equal(t, 0, second.OffsetDays)
}

func TestNormalizeSettings_NeverErrors(t *testing.T) {
	// Whatever shape comes in, the result is always usable.
	blobs := [][]byte{
		[]byte(`{}`),
		[]byte(`{"dayStartTime": 830}`),
		[]byte(`{"stages": []}`),
		[]byte(`{"pushPresets": [{"label": "x"}]}`),
	}
	for _, raw := range blobs {
		s := NormalizeSettings(raw)
		assert.NotEmpty(t, s.Stages)
		assert.NotEmpty(t, s.DayStartTime)
		assert.Len(t, s.PushPresets, PresetSlots)
	}
}

func TestNormalizePresets(t *testing.T) {
	raw := []byte(`{
		"pushPresets": [
			{"label": "Soon", "behavior": {"type": "addHours", "hours": 2}},
			{"label": "Bad hours", "behavior": {"type": "addHours", "hours": 0}},
			{"label": "Evening", "behavior": {"type": "nextTime", "time": "18:0"}},
			{"label": "Bad weekday", "behavior": {"type": "nextWeekdayTime", "weekday": 9, "time": "08:30"}}
		]
	}`)

	s := NormalizeSettings(raw)
	defaults := defaultPresets()

	require.Len(t, s.PushPresets, PresetSlots)

	// Valid slot kept, time strings re-padded.
	assert.Equal(t, "Soon", s.PushPresets[0].Label)
	assert.Equal(t, 2, s.PushPresets[0].Behavior.Hours)
	assert.Equal(t, "18:00", s.PushPresets[2].Behavior.Time)

	// Malformed and missing slots replaced per-slot with their default.
	assert.Equal(t, defaults[1], s.PushPresets[1])
	assert.Equal(t, defaults[3], s.PushPresets[3])
	assert.Equal(t, defaults[4], s.PushPresets[4])
}

func TestSettingsRoundTrip(t *testing.T) {
	s := DefaultSettings()
	raw, err := s.Marshal()
	require.NoError(t, err)

	again := NormalizeSettings(raw)
	assert.Equal(t, s, again)
}

func TestStageByID(t *testing.T) {
	s := DefaultSettings()

	stage := s.StageByID("stage_3")
	require.NotNil(t, stage)
	assert.Equal(t, 7, stage.OffsetDays)

	assert.Nil(t, s.StageByID("nope"))
}

package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(day int) time.Time {
	return time.Date(2024, 3, day, 8, 30, 0, 0, time.UTC)
}

func tsPtr(day int) *time.Time {
	t := ts(day)
	return &t
}

func TestTouchpointDates(t *testing.T) {
	end := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 24, 12, 0, 0, 0, time.UTC), TouchpointDate(end, 7))
	assert.Equal(t, end, TouchpointDate(end, 0))

	// Touchpoint order is preserved as given; offsets need not be sorted.
	dates := TouchpointDates(end, []int{14, 0, 7})
	require.Len(t, dates, 3)
	assert.Equal(t, time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, end, dates[1])
	assert.Equal(t, time.Date(2024, 3, 24, 12, 0, 0, 0, time.UTC), dates[2])
}

func TestQualifiesForSnap_WindowBoundary(t *testing.T) {
	touchpoints := []time.Time{ts(20)}
	const window = 2

	tests := []struct {
		name string
		lead LeadSnapshot
		want bool
	}{
		{"exactly on touchpoint", LeadSnapshot{NextActionAt: tsPtr(20)}, true},
		{"exactly window days before", LeadSnapshot{NextActionAt: tsPtr(18)}, true},
		{"exactly window days after", LeadSnapshot{NextActionAt: tsPtr(22)}, true},
		{"one day past the window", LeadSnapshot{NextActionAt: tsPtr(23)}, false},
		{"one day before the window", LeadSnapshot{NextActionAt: tsPtr(17)}, false},
		{"no next action", LeadSnapshot{}, false},
		{"archived", LeadSnapshot{NextActionAt: tsPtr(20), Archived: true}, false},
		{"deleted", LeadSnapshot{NextActionAt: tsPtr(20), Deleted: true}, false},
		{"closed won", LeadSnapshot{NextActionAt: tsPtr(20), State: "closed_won"}, false},
		{"drop out", LeadSnapshot{NextActionAt: tsPtr(20), State: "drop_out"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QualifiesForSnap(tt.lead, touchpoints, window))
		})
	}
}

func TestQualifiesForSnap_AnyTouchpoint(t *testing.T) {
	// One touchpoint far away, one close: the close one is enough.
	touchpoints := []time.Time{ts(1), ts(21)}
	lead := LeadSnapshot{NextActionAt: tsPtr(20)}
	assert.True(t, QualifiesForSnap(lead, touchpoints, 1))
}

func TestTargetLeads_RuleUnion(t *testing.T) {
	leads := []LeadSnapshot{
		{ID: 1, Name: "Acme Corp", State: "open", NextActionAt: tsPtr(20)},
		{ID: 2, Name: "Beta LLC", State: "drop_out"},
		{ID: 3, Name: "Gamma Inc", State: "closed_won"},
		{ID: 4, Name: "Delta Co", State: "open", Archived: true},
		{ID: 5, Name: "Omega GmbH", State: "open"},
	}
	touchpoints := []time.Time{ts(20)}

	ids := func(sel []LeadSnapshot) []uint {
		var out []uint
		for _, l := range sel {
			out = append(out, l.ID)
		}
		return out
	}

	// all_active picks open, unarchived leads only.
	sel := TargetLeads(leads, []string{TargetAllActive}, "", touchpoints, 1)
	assert.Equal(t, []uint{1, 5}, ids(sel))

	// drop_out reaches leads all_active would skip.
	sel = TargetLeads(leads, []string{TargetDropOut}, "", touchpoints, 1)
	assert.Equal(t, []uint{2}, ids(sel))

	// Rules are a union, and no lead appears twice.
	sel = TargetLeads(leads, []string{TargetAllActive, TargetDropOut}, "", touchpoints, 1)
	assert.Equal(t, []uint{1, 2, 5}, ids(sel))

	// snap_active only picks leads whose schedule collides.
	sel = TargetLeads(leads, []string{TargetSnapActive}, "", touchpoints, 1)
	assert.Equal(t, []uint{1}, ids(sel))
}

func TestTargetLeads_CustomSearchNarrows(t *testing.T) {
	leads := []LeadSnapshot{
		{ID: 1, Name: "Acme Corp", Product: "Widgets", State: "open"},
		{ID: 2, Name: "Beta LLC", Product: "acme widgets", State: "open"},
		{ID: 3, Name: "Gamma Inc", Product: "Gears", State: "open"},
	}

	// custom_search on its own selects nothing; it only narrows.
	sel := TargetLeads(leads, []string{TargetCustomSearch}, "acme", nil, 1)
	assert.Empty(t, sel)

	// Case-insensitive substring over name and product.
	sel = TargetLeads(leads, []string{TargetAllActive, TargetCustomSearch}, "ACME", nil, 1)
	require.Len(t, sel, 2)
	assert.Equal(t, uint(1), sel[0].ID)
	assert.Equal(t, uint(2), sel[1].ID)
}

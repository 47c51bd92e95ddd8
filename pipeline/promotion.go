package pipeline

import (
	"strings"
	"time"
)

// Targeting rule tags accepted on a promotion.
const (
	TargetAllActive    = "all_active"
	TargetDropOut      = "drop_out"
	TargetSnapActive   = "snap_active"
	TargetCustomSearch = "custom_search"
)

// LeadSnapshot is the slice of a lead the promotion and sequence engines
// care about, detached from persistence.
type LeadSnapshot struct {
	ID           uint
	Name         string
	Product      string
	State        string
	StageID      string
	Archived     bool
	Deleted      bool
	NextActionAt *time.Time
}

// Active reports whether the lead is still in play: not archived, not
// deleted, and not in a terminal state.
func (l LeadSnapshot) Active() bool {
	return !l.Archived && !l.Deleted && !NormalizeLeadState(l.State).Closed()
}

// TouchpointDate counts offsetDays backward from the campaign end date.
// Promotions are planned end-anchored, not start-anchored.
func TouchpointDate(endDate time.Time, offsetDays int) time.Time {
	return AddDays(endDate, -offsetDays)
}

// TouchpointDates maps every offset through TouchpointDate, in touchpoint
// order. Order is independent of offset size; no monotonicity is assumed.
func TouchpointDates(endDate time.Time, offsets []int) []time.Time {
	dates := make([]time.Time, len(offsets))
	for i, off := range offsets {
		dates[i] = TouchpointDate(endDate, off)
	}
	return dates
}

// QualifiesForSnap reports whether the lead's organic follow-up collides
// with any promotional touchpoint: the lead is active, has a scheduled next
// action, and that action falls within snapWindowDays (inclusive) of a
// touchpoint date.
func QualifiesForSnap(lead LeadSnapshot, touchpoints []time.Time, snapWindowDays int) bool {
	if !lead.Active() || lead.NextActionAt == nil {
		return false
	}
	for _, tp := range touchpoints {
		if DaysBetween(*lead.NextActionAt, tp) <= snapWindowDays {
			return true
		}
	}
	return false
}

// TargetLeads selects the leads a promotion should include. Rules are a
// union: a lead matching any present rule is in. A custom_search rule does
// not add leads on its own; it narrows the union by a case-insensitive
// substring match against the lead name or product.
func TargetLeads(leads []LeadSnapshot, rules []string, searchTerm string, touchpoints []time.Time, snapWindowDays int) []LeadSnapshot {
	ruleSet := make(map[string]bool, len(rules))
	for _, r := range rules {
		ruleSet[r] = true
	}

	var out []LeadSnapshot
	for _, lead := range leads {
		if lead.Deleted {
			continue
		}

		matched := false
		if ruleSet[TargetAllActive] && lead.Active() {
			matched = true
		}
		if !matched && ruleSet[TargetDropOut] && NormalizeLeadState(lead.State) == StateDropOut {
			matched = true
		}
		if !matched && ruleSet[TargetSnapActive] && QualifiesForSnap(lead, touchpoints, snapWindowDays) {
			matched = true
		}
		if !matched {
			continue
		}

		if ruleSet[TargetCustomSearch] && !matchesSearch(lead, searchTerm) {
			continue
		}
		out = append(out, lead)
	}
	return out
}

func matchesSearch(lead LeadSnapshot, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(lead.Name), term) ||
		strings.Contains(strings.ToLower(lead.Product), term)
}

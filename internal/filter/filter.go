// Package filter narrows a run's canonical events before they are announced.
//
// Criteria are combined with AND; values within one criterion with OR:
//   - Days (weekday names, case-insensitive, e.g. "tuesday" or "tue")
//   - Categories (report category, e.g. "Meetup", "Tech Session")
//   - Formats (attendance, e.g. "ONLINE", "HYBRID")
//   - Keywords (case-insensitive substring of the title)
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Formats = []string{"ONLINE", "HYBRID"}
//	f.Keywords = []string{"llm"}
//
//	announced := f.Apply(state.Events)
package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/ai-events/internal/event"
)

// Filter represents event filtering criteria
type Filter struct {
	Days       []string `json:"days,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Formats    []string `json:"formats,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all events until criteria are added.
func NewFilter() *Filter {
	return &Filter{}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return len(f.Days) == 0 &&
		len(f.Categories) == 0 &&
		len(f.Formats) == 0 &&
		len(f.Keywords) == 0
}

// Matches checks if an event matches all active filter criteria.
// An empty filter matches all events.
func (f *Filter) Matches(evt event.CanonicalRecord) bool {
	if f.IsEmpty() {
		return true
	}

	if len(f.Days) > 0 {
		day := evt.Day
		if day.IsZero() {
			day = event.ParseDate(evt.Date)
		}
		if day.IsZero() || !matchesDay(f.Days, day.Weekday().String()) {
			return false
		}
	}

	if len(f.Categories) > 0 && !equalsAny(f.Categories, string(evt.Category)) {
		return false
	}

	if len(f.Formats) > 0 && !equalsAny(f.Formats, string(evt.Format)) {
		return false
	}

	// Check title keywords (case-insensitive substring match)
	if len(f.Keywords) > 0 {
		titleLower := strings.ToLower(evt.Title)
		matched := false
		for _, kw := range f.Keywords {
			if strings.Contains(titleLower, strings.ToLower(strings.TrimSpace(kw))) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// Apply returns the events that match all criteria, in input order.
// If the filter is empty, returns the original list unchanged.
func (f *Filter) Apply(events []event.CanonicalRecord) []event.CanonicalRecord {
	if f.IsEmpty() {
		return events
	}

	filtered := make([]event.CanonicalRecord, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}
	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "Days: tue, wed | Formats: ONLINE | Keywords: llm"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string
	if len(f.Days) > 0 {
		parts = append(parts, fmt.Sprintf("Days: %s", strings.Join(f.Days, ", ")))
	}
	if len(f.Categories) > 0 {
		parts = append(parts, fmt.Sprintf("Categories: %s", strings.Join(f.Categories, ", ")))
	}
	if len(f.Formats) > 0 {
		parts = append(parts, fmt.Sprintf("Formats: %s", strings.Join(f.Formats, ", ")))
	}
	if len(f.Keywords) > 0 {
		parts = append(parts, fmt.Sprintf("Keywords: %s", strings.Join(f.Keywords, ", ")))
	}
	return strings.Join(parts, " | ")
}

// matchesDay accepts full weekday names and three-letter prefixes.
func matchesDay(days []string, weekday string) bool {
	weekday = strings.ToLower(weekday)
	for _, d := range days {
		d = strings.ToLower(strings.TrimSpace(d))
		if len(d) >= 3 && strings.HasPrefix(weekday, d) {
			return true
		}
	}
	return false
}

func equalsAny(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}

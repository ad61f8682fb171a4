package cli

import (
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/ai-events/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate     SortOrder = "date"
	SortByTitle    SortOrder = "title"
	SortByCategory SortOrder = "category"
)

// sortEvents returns a sorted copy of events. Unknown or empty orders keep the
// pipeline order.
func sortEvents(events []event.CanonicalRecord, sortOrder SortOrder) []event.CanonicalRecord {
	sorted := append([]event.CanonicalRecord(nil), events...)

	switch sortOrder {
	case SortByDate:
		sort.SliceStable(sorted, func(i, j int) bool {
			return compareByDate(sorted[i], sorted[j])
		})
	case SortByTitle:
		sort.SliceStable(sorted, func(i, j int) bool {
			if !strings.EqualFold(sorted[i].Title, sorted[j].Title) {
				return strings.ToLower(sorted[i].Title) < strings.ToLower(sorted[j].Title)
			}
			// If titles are equal, sort by date
			return compareByDate(sorted[i], sorted[j])
		})
	case SortByCategory:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Category != sorted[j].Category {
				return sorted[i].Category < sorted[j].Category
			}
			return compareByDate(sorted[i], sorted[j])
		})
	}

	return sorted
}

// compareByDate compares two events by their date and time
// Returns true if event i should come before event j
func compareByDate(i, j event.CanonicalRecord) bool {
	dateI := eventDay(i)
	dateJ := eventDay(j)

	// If both dates are valid, compare them
	if !dateI.IsZero() && !dateJ.IsZero() && !dateI.Equal(dateJ) {
		return dateI.Before(dateJ)
	}

	// If only one date is valid, put the valid one first
	if !dateI.IsZero() && dateJ.IsZero() {
		return true
	}
	if dateI.IsZero() && !dateJ.IsZero() {
		return false
	}

	return i.Time < j.Time
}

func eventDay(e event.CanonicalRecord) time.Time {
	if !e.Day.IsZero() {
		return e.Day
	}
	return event.ParseDate(e.Date)
}

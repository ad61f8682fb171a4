// Package report renders canonical events as the weekly grouped-by-weekday text report.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/ai-events/internal/event"
)

// Weekdays are the report buckets, in output order.
var Weekdays = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"}

// NoEvents is the placeholder line for a day without events.
const NoEvents = "(no events)"

// ErrInvalidDayTable is returned when the day→date table does not cover
// Monday through Friday with one date each.
var ErrInvalidDayTable = errors.New("invalid weekday table")

// Day maps a weekday bucket label to its calendar date.
type Day struct {
	Label string
	Date  time.Time
}

// DaysFromTable builds the ordered day list from a label→YYYY-MM-DD table.
// Labels are case-insensitive.
func DaysFromTable(table map[string]string) ([]Day, error) {
	normalized := make(map[string]string, len(table))
	for label, date := range table {
		normalized[strings.ToUpper(strings.TrimSpace(label))] = date
	}

	days := make([]Day, 0, len(Weekdays))
	for _, label := range Weekdays {
		raw, ok := normalized[label]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidDayTable, label)
		}
		d, err := event.ParseISODate(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDayTable, label, err)
		}
		days = append(days, Day{Label: label, Date: d})
	}
	if len(normalized) != len(Weekdays) {
		return nil, fmt.Errorf("%w: expected %d days, got %d", ErrInvalidDayTable, len(Weekdays), len(normalized))
	}
	return days, nil
}

// WeekLabel returns the ISO week number of day.
func WeekLabel(day time.Time) string {
	_, week := day.ISOWeek()
	return strconv.Itoa(week)
}

// Formatter renders reports for a fixed day table.
type Formatter struct {
	days []Day
}

// NewFormatter creates a Formatter for days.
func NewFormatter(days []Day) *Formatter {
	return &Formatter{days: days}
}

// Days returns the formatter's day table.
func (f *Formatter) Days() []Day {
	return f.days
}

// Format renders the report. Records whose date matches no day are left out.
func (f *Formatter) Format(records []event.CanonicalRecord, weekLabel string) (string, error) {
	var sb strings.Builder
	if err := f.Write(&sb, records, weekLabel); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Write renders the report to w.
func (f *Formatter) Write(w io.Writer, records []event.CanonicalRecord, weekLabel string) error {
	if err := f.checkDays(); err != nil {
		return err
	}

	groups := Group(records, f.days)

	fmt.Fprintf(w, "**==================[ WEEK %s EVENTS ]==================**\n\n", weekLabel)
	for i, day := range f.days {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "**[%s]**\n", day.Label)

		events := groups[day.Label]
		if len(events) == 0 {
			fmt.Fprintln(w, NoEvents)
			continue
		}
		for _, evt := range events {
			fmt.Fprintln(w, Line(evt))
		}
	}

	return nil
}

func (f *Formatter) checkDays() error {
	if len(f.days) != len(Weekdays) {
		return fmt.Errorf("%w: expected %d days, got %d", ErrInvalidDayTable, len(Weekdays), len(f.days))
	}
	seen := make(map[time.Time]bool, len(f.days))
	for i, day := range f.days {
		if day.Label != Weekdays[i] {
			return fmt.Errorf("%w: day %d is %q, want %q", ErrInvalidDayTable, i, day.Label, Weekdays[i])
		}
		if day.Date.IsZero() || seen[day.Date] {
			return fmt.Errorf("%w: %s has no distinct date", ErrInvalidDayTable, day.Label)
		}
		seen[day.Date] = true
	}
	return nil
}

// Group buckets records by weekday label, keeping input order within each day.
func Group(records []event.CanonicalRecord, days []Day) map[string][]event.CanonicalRecord {
	groups := make(map[string][]event.CanonicalRecord, len(days))
	for _, rec := range records {
		day := rec.Day
		if day.IsZero() {
			day = event.ParseDate(rec.Date)
		}
		for _, d := range days {
			if sameDate(d.Date, day) {
				groups[d.Label] = append(groups[d.Label], rec)
				break
			}
		}
	}
	return groups
}

// Line renders one event in the report template.
func Line(evt event.CanonicalRecord) string {
	if evt.URL == "" {
		return fmt.Sprintf("**[%s]** (%s)[%s]", evt.Title, evt.Format, evt.Category)
	}
	return fmt.Sprintf("**[[%s]](%s)** (%s)[%s]", evt.Title, evt.URL, evt.Format, evt.Category)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

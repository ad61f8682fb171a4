// Package validate filters classified records down to canonical ones: complete,
// dated inside the target window, and unique by URL (first seen wins).
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/ai-events/internal/event"
)

// Reason tags why a record was rejected. Rejections are values, not errors.
type Reason string

const (
	ReasonMissingField    Reason = "missing_field"
	ReasonUnparseableDate Reason = "unparseable_date"
	ReasonOutOfWindow     Reason = "out_of_window"
	ReasonDuplicateURL    Reason = "duplicate_url"
)

// Reasons lists every rejection reason in the order checks run.
var Reasons = []Reason{ReasonMissingField, ReasonUnparseableDate, ReasonOutOfWindow, ReasonDuplicateURL}

// Window is an inclusive calendar date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a Window from YYYY-MM-DD strings.
func NewWindow(start, end string) (Window, error) {
	s, err := event.ParseISODate(start)
	if err != nil {
		return Window{}, fmt.Errorf("parsing window start: %w", err)
	}
	e, err := event.ParseISODate(end)
	if err != nil {
		return Window{}, fmt.Errorf("parsing window end: %w", err)
	}
	if e.Before(s) {
		return Window{}, fmt.Errorf("window end %s is before start %s", end, start)
	}
	return Window{Start: s, End: e}, nil
}

// Contains reports whether day falls inside the window, both ends included.
func (w Window) Contains(day time.Time) bool {
	return !day.Before(w.Start) && !day.After(w.End)
}

// Rejection records a dropped record and why.
type Rejection struct {
	Record event.ClassifiedRecord
	Reason Reason
}

// Result is the outcome of one validation pass.
type Result struct {
	Accepted []event.CanonicalRecord
	Rejected []Rejection
}

// Counts returns the number of rejections per reason.
func (r Result) Counts() map[Reason]int {
	counts := make(map[Reason]int)
	for _, rej := range r.Rejected {
		counts[rej.Reason]++
	}
	return counts
}

// Validator checks records against a target window.
type Validator struct {
	window Window
}

// New creates a Validator for the given window.
func New(window Window) *Validator {
	return &Validator{window: window}
}

// Window returns the validator's target window.
func (v *Validator) Window() Window {
	return v.window
}

// Validate returns the records that pass, in input order.
func (v *Validator) Validate(records []event.ClassifiedRecord) []event.CanonicalRecord {
	return v.Check(records).Accepted
}

// Check validates records in input order and reports every rejection.
func (v *Validator) Check(records []event.ClassifiedRecord) Result {
	result := Result{
		Accepted: make([]event.CanonicalRecord, 0, len(records)),
	}
	seen := make(map[string]bool)

	for _, rec := range records {
		day, reason := v.check(rec, seen)
		if reason != "" {
			result.Rejected = append(result.Rejected, Rejection{Record: rec, Reason: reason})
			continue
		}
		if rec.URL != "" {
			seen[rec.URL] = true
		}
		result.Accepted = append(result.Accepted, event.NewCanonical(rec, day))
	}

	return result
}

func (v *Validator) check(rec event.ClassifiedRecord, seen map[string]bool) (time.Time, Reason) {
	if strings.TrimSpace(rec.Title) == "" || strings.TrimSpace(rec.Date) == "" {
		return time.Time{}, ReasonMissingField
	}

	day := event.ParseDate(rec.Date)
	if day.IsZero() {
		return time.Time{}, ReasonUnparseableDate
	}

	if !v.window.Contains(day) {
		return time.Time{}, ReasonOutOfWindow
	}

	if rec.URL != "" && seen[rec.URL] {
		return time.Time{}, ReasonDuplicateURL
	}

	return day, ""
}

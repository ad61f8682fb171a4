// Package calendar exports canonical events as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/ai-events/internal/event"
)

const (
	ProductID = "-//AI Events//ai-events//EN"
	uidDomain = "ai-events"

	// timed events without an end get this duration
	defaultDuration = 2 * time.Hour
)

var timeLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3:04 pm", "3:04pm"}

// GenerateICS generates an iCalendar feed with one VEVENT per record. Records with a
// time become timed events in loc, the rest are all-day events.
func GenerateICS(records []event.CanonicalRecord, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	now := time.Now().UTC()
	for _, rec := range records {
		addEvent(cal, rec, loc, now)
	}

	return cal.Serialize()
}

func addEvent(cal *ical.Calendar, rec event.CanonicalRecord, loc *time.Location, stamp time.Time) {
	day := rec.Day
	if day.IsZero() {
		day = event.ParseDate(rec.Date)
	}

	ev := cal.AddEvent(fmt.Sprintf("%s@%s", rec.ID, uidDomain))
	ev.SetDtStampTime(stamp)
	ev.SetSummary(rec.Title)
	ev.SetDescription(description(rec))
	ev.SetProperty(ical.ComponentPropertyStatus, "CONFIRMED")
	if rec.Location != "" {
		ev.SetLocation(rec.Location)
	}
	if rec.URL != "" {
		ev.SetURL(rec.URL)
	}

	if start, ok := startTime(day, rec.Time, loc); ok {
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(defaultDuration))
		return
	}
	ev.SetAllDayStartAt(day)
	ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
}

func description(rec event.CanonicalRecord) string {
	parts := []string{fmt.Sprintf("%s (%s)", rec.Category, rec.Format)}
	if rec.URL != "" {
		parts = append(parts, rec.URL)
	}
	return strings.Join(parts, "\n")
}

// startTime combines day with a clock time such as "18:00" or "6:30 PM".
func startTime(day time.Time, clock string, loc *time.Location) (time.Time, bool) {
	clock = strings.TrimSpace(clock)
	if clock == "" || day.IsZero() {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), true
	}
	return time.Time{}, false
}

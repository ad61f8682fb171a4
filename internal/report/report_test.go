package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/ai-events/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultTable = map[string]string{
	"monday":    "2025-05-19",
	"tuesday":   "2025-05-20",
	"wednesday": "2025-05-21",
	"thursday":  "2025-05-22",
	"friday":    "2025-05-23",
}

func newFormatter(t *testing.T) *Formatter {
	t.Helper()
	days, err := DaysFromTable(defaultTable)
	require.NoError(t, err)
	return NewFormatter(days)
}

func canonical(title, date, url string, typ event.Type, format event.Format, cat event.Category) event.CanonicalRecord {
	rec := event.ClassifiedRecord{
		CandidateRecord: event.CandidateRecord{Title: title, Date: date, URL: url},
		Type:            typ,
		Format:          format,
		Category:        cat,
	}
	return event.NewCanonical(rec, event.ParseDate(date))
}

func TestFormat_Empty(t *testing.T) {
	f := newFormatter(t)

	got, err := f.Format(nil, "21")
	require.NoError(t, err)

	want := `**==================[ WEEK 21 EVENTS ]==================**

**[MONDAY]**
(no events)

**[TUESDAY]**
(no events)

**[WEDNESDAY]**
(no events)

**[THURSDAY]**
(no events)

**[FRIDAY]**
(no events)
`
	assert.Equal(t, want, got)
	assert.Equal(t, 5, strings.Count(got, NoEvents))
}

func TestFormat_GroupsByWeekday(t *testing.T) {
	f := newFormatter(t)
	records := []event.CanonicalRecord{
		canonical("AI Founders Meetup", "May 20, 2025", "https://example.com/meetup", event.TypeMeetup, event.FormatInPerson, event.CategoryMeetup),
		canonical("ML Workshop", "2025-05-20", "https://example.com/ws", event.TypeWorkshop, event.FormatOnline, event.CategoryWorkshop),
		canonical("GenAI Summit", "Thursday, May 22, 2025", "", event.TypeConference, event.FormatHybrid, event.CategoryConference),
	}

	got, err := f.Format(records, "21")
	require.NoError(t, err)

	want := `**==================[ WEEK 21 EVENTS ]==================**

**[MONDAY]**
(no events)

**[TUESDAY]**
**[[AI Founders Meetup]](https://example.com/meetup)** (INPERSON)[Meetup]
**[[ML Workshop]](https://example.com/ws)** (ONLINE)[Workshop]

**[WEDNESDAY]**
(no events)

**[THURSDAY]**
**[GenAI Summit]** (HYBRID)[Conference]

**[FRIDAY]**
(no events)
`
	assert.Equal(t, want, got)
}

func TestFormat_HeadersInOrder(t *testing.T) {
	f := newFormatter(t)

	got, err := f.Format([]event.CanonicalRecord{
		canonical("Late", "May 23, 2025", "https://x", event.TypeConference, event.FormatInPerson, event.CategoryConference),
	}, "21")
	require.NoError(t, err)

	last := -1
	for _, label := range Weekdays {
		header := "**[" + label + "]**"
		assert.Equal(t, 1, strings.Count(got, header), label)
		idx := strings.Index(got, header)
		assert.Greater(t, idx, last, label)
		last = idx
	}
}

func TestFormat_DropsRecordsOutsideTable(t *testing.T) {
	f := newFormatter(t)

	got, err := f.Format([]event.CanonicalRecord{
		canonical("June Event", "June 1, 2025", "https://june", event.TypeConference, event.FormatInPerson, event.CategoryConference),
	}, "21")
	require.NoError(t, err)

	assert.NotContains(t, got, "June Event")
	assert.Equal(t, 5, strings.Count(got, NoEvents))
}

func TestFormat_InvalidDays(t *testing.T) {
	tests := []struct {
		name string
		days []Day
	}{
		{"empty", nil},
		{"wrong order", []Day{
			{"TUESDAY", time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)},
			{"MONDAY", time.Date(2025, 5, 19, 0, 0, 0, 0, time.UTC)},
			{"WEDNESDAY", time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC)},
			{"THURSDAY", time.Date(2025, 5, 22, 0, 0, 0, 0, time.UTC)},
			{"FRIDAY", time.Date(2025, 5, 23, 0, 0, 0, 0, time.UTC)},
		}},
		{"zero date", []Day{
			{"MONDAY", time.Time{}},
			{"TUESDAY", time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)},
			{"WEDNESDAY", time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC)},
			{"THURSDAY", time.Date(2025, 5, 22, 0, 0, 0, 0, time.UTC)},
			{"FRIDAY", time.Date(2025, 5, 23, 0, 0, 0, 0, time.UTC)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFormatter(tt.days).Format(nil, "21")
			assert.True(t, errors.Is(err, ErrInvalidDayTable), "got %v", err)
		})
	}
}

func TestDaysFromTable(t *testing.T) {
	days, err := DaysFromTable(defaultTable)
	require.NoError(t, err)
	require.Len(t, days, 5)
	assert.Equal(t, "MONDAY", days[0].Label)
	assert.Equal(t, 19, days[0].Date.Day())
	assert.Equal(t, "FRIDAY", days[4].Label)

	_, err = DaysFromTable(map[string]string{"monday": "2025-05-19"})
	assert.ErrorIs(t, err, ErrInvalidDayTable)

	bad := map[string]string{}
	for k, v := range defaultTable {
		bad[k] = v
	}
	bad["saturday"] = "2025-05-24"
	_, err = DaysFromTable(bad)
	assert.ErrorIs(t, err, ErrInvalidDayTable)
}

func TestWeekLabel(t *testing.T) {
	assert.Equal(t, "21", WeekLabel(time.Date(2025, 5, 19, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1", WeekLabel(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)))
}

package event

import (
	"regexp"
	"strings"
	"time"
)

// ISODate is the layout used for calendar dates in configuration and IDs.
const ISODate = "2006-01-02"

// dateLayouts is tried in order; the first layout that parses wins.
var dateLayouts = []string{
	ISODate,                   // 2025-05-19
	"January 2, 2006",         // May 19, 2025
	"Monday, January 2, 2006", // Monday, May 19, 2025
	"Jan 2, 2006",             // Jun 3, 2025
	"Monday, Jan 2, 2006",
	"Mon, Jan 2, 2006",
}

var (
	ordinalSuffix  = regexp.MustCompile(`(\d)(?:st|nd|rd|th)\b`)
	dayYearNoComma = regexp.MustCompile(`(\d{1,2})\s+(\d{4})$`)
	weekdayNoComma = regexp.MustCompile(`^(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday|Mon|Tue|Wed|Thu|Fri|Sat|Sun)\s+`)
)

// NormalizeDateText rewrites extracted date text into the shapes the layouts expect:
// "Tuesday May 20th 2025" becomes "Tuesday, May 20, 2025".
func NormalizeDateText(dateText string) string {
	s := strings.Join(strings.Fields(dateText), " ")
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = dayYearNoComma.ReplaceAllString(s, "$1, $2")
	s = weekdayNoComma.ReplaceAllString(s, "$1, ")
	return s
}

// ParseDate attempts to parse event date text into a calendar date (UTC midnight).
// Returns time.Time{} (zero value) if parsing fails.
func ParseDate(dateText string) time.Time {
	if strings.TrimSpace(dateText) == "" {
		return time.Time{}
	}

	s := NormalizeDateText(dateText)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}

	return time.Time{}
}

// ParseISODate parses a YYYY-MM-DD configuration date.
func ParseISODate(s string) (time.Time, error) {
	return time.Parse(ISODate, strings.TrimSpace(s))
}

// Package classify assigns event type, attendance format and report category to
// extracted records using ordered keyword rule tables evaluated first-match-wins.
package classify

import (
	"strings"

	"github.com/pfrederiksen/ai-events/internal/event"
)

// TypeRule maps any of its keywords to an event type.
type TypeRule struct {
	Keywords []string
	Type     event.Type
}

// TypeRules precedence is fixed: a block mentioning both "workshop" and
// "hackathon" is a Workshop.
var TypeRules = []TypeRule{
	{Keywords: []string{"meetup", "networking"}, Type: event.TypeMeetup},
	{Keywords: []string{"workshop", "training"}, Type: event.TypeWorkshop},
	{Keywords: []string{"hackathon"}, Type: event.TypeHackathon},
}

// DefaultType applies when no TypeRule matches.
const DefaultType = event.TypeConference

var (
	hybridMarkers   = []string{"hybrid"}
	onlineMarkers   = []string{"online", "virtual", "zoom", "livestream", "webinar"}
	inPersonMarkers = []string{"in person", "in-person", "venue"}
	sessionMarkers  = []string{"tech talk", "talk", "session", "panel", "fireside"}
)

// Type returns the event type for a block of raw text.
func Type(rawText string) event.Type {
	lower := strings.ToLower(rawText)
	for _, rule := range TypeRules {
		if containsAny(lower, rule.Keywords) {
			return rule.Type
		}
	}
	return DefaultType
}

// Format returns how the event is attended.
func Format(rawText string) event.Format {
	lower := strings.ToLower(rawText)
	switch {
	case containsAny(lower, hybridMarkers):
		return event.FormatHybrid
	case containsAny(lower, onlineMarkers) && containsAny(lower, inPersonMarkers):
		return event.FormatHybrid
	case containsAny(lower, onlineMarkers):
		return event.FormatOnline
	default:
		return event.FormatInPerson
	}
}

// Category maps an event type to its report category. Conferences that read like a
// single talk or panel are reported as Tech Sessions.
func Category(t event.Type, rawText string) event.Category {
	switch t {
	case event.TypeMeetup:
		return event.CategoryMeetup
	case event.TypeWorkshop:
		return event.CategoryWorkshop
	case event.TypeHackathon:
		return event.CategoryHackathon
	}
	if containsAny(strings.ToLower(rawText), sessionMarkers) {
		return event.CategoryTechSession
	}
	return event.CategoryConference
}

// Classify tags a candidate using its raw block text. Candidates without raw text
// (the seed record) are classified from their title.
func Classify(c event.CandidateRecord) event.ClassifiedRecord {
	text := c.RawText
	if text == "" {
		text = c.Title
	}
	t := Type(text)
	return event.ClassifiedRecord{
		CandidateRecord: c,
		Type:            t,
		Format:          Format(text),
		Category:        Category(t, text),
	}
}

// All classifies candidates, preserving order.
func All(candidates []event.CandidateRecord) []event.ClassifiedRecord {
	out := make([]event.ClassifiedRecord, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Classify(c))
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

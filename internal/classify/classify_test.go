package classify

import (
	"testing"

	"github.com/pfrederiksen/ai-events/internal/event"
	"github.com/stretchr/testify/assert"
)

func TestType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want event.Type
	}{
		{"meetup", "AI Founders Meetup", event.TypeMeetup},
		{"networking", "Evening of NETWORKING and demos", event.TypeMeetup},
		{"workshop", "Hands-on LLM Workshop", event.TypeWorkshop},
		{"training", "RAG training day", event.TypeWorkshop},
		{"hackathon only", "Agents Hackathon", event.TypeHackathon},
		{"workshop beats hackathon", "Hackathon prep workshop", event.TypeWorkshop},
		{"meetup beats workshop", "Workshop and meetup", event.TypeMeetup},
		{"default", "GenAI Summit 2025", event.TypeConference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Type(tt.text))
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		text string
		want event.Format
	}{
		{"Hybrid event at Moscone", event.FormatHybrid},
		{"In-person at the venue, also streamed on Zoom", event.FormatHybrid},
		{"Virtual webinar", event.FormatOnline},
		{"Online only", event.FormatOnline},
		{"At SF Tech Hub", event.FormatInPerson},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.text))
		})
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, event.CategoryMeetup, Category(event.TypeMeetup, "panel"))
	assert.Equal(t, event.CategoryWorkshop, Category(event.TypeWorkshop, ""))
	assert.Equal(t, event.CategoryHackathon, Category(event.TypeHackathon, ""))
	assert.Equal(t, event.CategoryTechSession, Category(event.TypeConference, "Fireside chat with founders"))
	assert.Equal(t, event.CategoryConference, Category(event.TypeConference, "GenAI Summit"))
}

func TestClassify(t *testing.T) {
	c := event.CandidateRecord{
		Title:   "AI Founders Meetup",
		Date:    "May 20, 2025",
		RawText: "AI Founders Meetup\nMay 20, 2025\nhttps://example.com/meetup",
	}

	got := Classify(c)

	assert.Equal(t, c, got.CandidateRecord)
	assert.Equal(t, event.TypeMeetup, got.Type)
	assert.Equal(t, event.FormatInPerson, got.Format)
	assert.Equal(t, event.CategoryMeetup, got.Category)
}

func TestClassify_UsesTitleWithoutRawText(t *testing.T) {
	got := Classify(event.CandidateRecord{Title: "AI & Machine Learning Meetup"})
	assert.Equal(t, event.TypeMeetup, got.Type)
}

func TestAll_PreservesOrder(t *testing.T) {
	got := All([]event.CandidateRecord{
		{Title: "B Hackathon", RawText: "B Hackathon"},
		{Title: "A Summit", RawText: "A Summit"},
	})

	assert.Len(t, got, 2)
	assert.Equal(t, "B Hackathon", got[0].Title)
	assert.Equal(t, event.TypeHackathon, got[0].Type)
	assert.Equal(t, event.TypeConference, got[1].Type)
}

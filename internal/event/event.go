package event

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

// Type is the kind of event assigned by the classifier.
type Type string

const (
	TypeMeetup     Type = "Meetup"
	TypeWorkshop   Type = "Workshop"
	TypeHackathon  Type = "Hackathon"
	TypeConference Type = "Conference"
)

// Format is how an event is attended. It renders as the (TYPE) column of the report.
type Format string

const (
	FormatInPerson Format = "INPERSON"
	FormatOnline   Format = "ONLINE"
	FormatHybrid   Format = "HYBRID"
)

// Category is the bracketed report category.
type Category string

const (
	CategoryTechSession Category = "Tech Session"
	CategoryWorkshop    Category = "Workshop"
	CategoryConference  Category = "Conference"
	CategoryMeetup      Category = "Meetup"
	CategoryHackathon   Category = "Hackathon"
)

// RawBlock is a segment of search/LLM text believed to describe at most one event.
type RawBlock struct {
	Text        string `json:"text"`
	SourceQuery string `json:"source_query,omitempty"`
}

// CandidateRecord is a partially structured event pulled from a RawBlock.
// Date, Time and URL are empty when absent.
type CandidateRecord struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	RawText     string `json:"-"`
	SourceQuery string `json:"-"`
}

// ClassifiedRecord is a CandidateRecord tagged by the classifier.
type ClassifiedRecord struct {
	CandidateRecord
	Type     Type     `json:"type"`
	Format   Format   `json:"format"`
	Category Category `json:"category"`
}

// CanonicalRecord is a ClassifiedRecord that passed validation.
type CanonicalRecord struct {
	ClassifiedRecord
	ID  string    `json:"id"`
	Day time.Time `json:"day"`
}

// GenerateID creates a deterministic ID for an event based on stable fields
func GenerateID(url, title, date string) string {
	h := sha1.New()
	h.Write([]byte(strings.TrimSpace(url) + "|" + strings.ToLower(strings.TrimSpace(title)) + "|" + date))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// NewCanonical builds a CanonicalRecord for a record whose date parsed to day.
func NewCanonical(rec ClassifiedRecord, day time.Time) CanonicalRecord {
	return CanonicalRecord{
		ClassifiedRecord: rec,
		ID:               GenerateID(rec.URL, rec.Title, day.Format(ISODate)),
		Day:              day,
	}
}

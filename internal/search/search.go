package search

import (
	"context"
	"fmt"
	"strings"
)

// Searcher answers a query with free text.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Completer returns the model's answer to prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ParseError reports a response that could not be interpreted. Raw holds the
// response body as plain text.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("uninterpretable response: %s", e.Reason)
}

// unescapeRaw undoes the escaping left in answers that were stringified JSON.
func unescapeRaw(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\"`, `"`)
	return s
}

// CleanupPrompt asks a model to rewrite a search answer into one paragraph per event
// with the title on the first line, so the extractor sees one event per block.
func CleanupPrompt(text string) string {
	return `Given the following text about AI events, extract and format the events into a clean list.
Remove any JSON artifacts, web results, or non-event content.
Write one paragraph per event, separated by a blank line, with exactly these lines:
Title (clean, no markdown, first line of the paragraph)
Date: the date written as "Month D, YYYY"
Location: the venue if available
URL: the event's website
Type: Conference, Meetup, Workshop, or Hackathon

Do not include time, descriptions, headings, or a summary.

Text to process:
` + text + `

Return only the event paragraphs.`
}

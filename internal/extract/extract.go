package extract

import (
	"strings"

	"github.com/pfrederiksen/ai-events/internal/event"
)

// Extractor pulls CandidateRecords out of free text.
type Extractor struct {
	location string
}

// New creates an Extractor that stamps every candidate with location.
func New(location string) *Extractor {
	return &Extractor{location: location}
}

// Extract segments text and returns candidates in block order.
func (x *Extractor) Extract(text string) []event.CandidateRecord {
	return x.ExtractBlocks(Segment(text, ""))
}

// ExtractBlocks returns one candidate per block that survives exclusion and has a date.
// Order follows the input blocks.
func (x *Extractor) ExtractBlocks(blocks []event.RawBlock) []event.CandidateRecord {
	candidates := make([]event.CandidateRecord, 0, len(blocks))
	for _, block := range blocks {
		if c, ok := x.extractBlock(block); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

func (x *Extractor) extractBlock(block event.RawBlock) (event.CandidateRecord, bool) {
	text := strings.TrimSpace(block.Text)
	if text == "" || Excluded(text) {
		return event.CandidateRecord{}, false
	}

	date := extractDate(text)
	if date == "" {
		return event.CandidateRecord{}, false
	}

	title := CleanTitle(firstLine(text))
	if title == "" {
		title = truncate(strings.Join(strings.Fields(text), " "))
	}

	return event.CandidateRecord{
		Title:       title,
		Date:        date,
		Time:        timePattern.FindString(text),
		Location:    x.location,
		URL:         extractURL(text),
		RawText:     text,
		SourceQuery: block.SourceQuery,
	}, true
}

// Segment splits text into blocks. Blank lines end a block, and a line starting with a
// heading or bold/bullet marker starts a new one.
func Segment(text, query string) []event.RawBlock {
	var blocks []event.RawBlock
	var current []string

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, event.RawBlock{
				Text:        strings.Join(current, "\n"),
				SourceQuery: query,
			})
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case startsBlock(line):
			flush()
			current = append(current, line)
		default:
			current = append(current, line)
		}
	}
	flush()

	return blocks
}

func startsBlock(line string) bool {
	for _, prefix := range blockStarters {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// Excluded reports whether a block is summary language or a JSON fragment.
func Excluded(block string) bool {
	lower := strings.ToLower(block)
	for _, phrase := range excludedPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(block, prefix) {
			return true
		}
	}
	return false
}

// extractDate returns the first match of the first date pattern that matches at all.
func extractDate(text string) string {
	for _, p := range DatePatterns {
		if match := p.Re.FindString(text); match != "" {
			return match
		}
	}
	return ""
}

func extractURL(text string) string {
	return strings.TrimRight(urlPattern.FindString(text), urlTrailing)
}

// CleanTitle applies TitleRules in order, trims and truncates.
func CleanTitle(line string) string {
	title := line
	for _, rule := range TitleRules {
		title = rule.Re.ReplaceAllString(title, rule.Repl)
	}
	return truncate(strings.TrimSpace(title))
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxTitleLen {
		return s
	}
	return string(runes[:maxTitleLen-len(ellipsis)]) + ellipsis
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

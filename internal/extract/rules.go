package extract

import "regexp"

const month = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*`

// Pattern is a named regular expression in an ordered rule table.
type Pattern struct {
	Name string
	Re   *regexp.Regexp
}

// DatePatterns is evaluated most specific first; the first pattern with any match wins.
var DatePatterns = []Pattern{
	{"weekday-month-day-year", regexp.MustCompile(`\b(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday),?\s+` + month + ` \d{1,2}(?:st|nd|rd|th)?,? \d{4}\b`)},
	{"month-day-year", regexp.MustCompile(`\b` + month + ` \d{1,2}(?:st|nd|rd|th)?,? \d{4}\b`)},
	{"iso", regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)},
}

var timePattern = regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?(?:\s*(?:AM|PM|am|pm)\b)?`)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+|www\.[^\s<>"]+`)

// TitleRule rewrites a title candidate. Rules run in table order.
type TitleRule struct {
	Name string
	Re   *regexp.Regexp
	Repl string
}

// TitleRules cleans the first line of a block into an event title.
var TitleRules = []TitleRule{
	{"bold", regexp.MustCompile(`^\*\*|\*\*$`), ""},
	{"leading link", regexp.MustCompile(`^\[([^\]]*)\]\([^)]*\)`), "$1"},
	{"bracket prefix", regexp.MustCompile(`^\[[^\]]*\]`), ""},
	{"pplx link", regexp.MustCompile(`\(pplx://[^)]*\)`), ""},
	{"heading", regexp.MustCompile(`^#{1,6}\s*`), ""},
	{"bullet", regexp.MustCompile(`^\s*[-•*]\s*`), ""},
	{"residual bold", regexp.MustCompile(`\*\*`), ""},
	{"quotes", regexp.MustCompile(`^"|"$`), ""},
	{"trailing comma", regexp.MustCompile(`,\s*$`), ""},
}

// blockStarters begin a new block even without a preceding blank line.
var blockStarters = []string{"###", "- **", "* **", "**"}

// excludedPhrases mark summary or commentary blocks (matched lowercase).
var excludedPhrases = []string{"summary", "in summary", "overview", "note:", "while there are"}

// excludedPrefixes mark raw JSON fragments.
var excludedPrefixes = []string{"{", `"answer":`}

const (
	maxTitleLen = 100
	ellipsis    = "..."
)

// urlTrailing is stripped from the end of a matched URL (markdown link and sentence punctuation).
const urlTrailing = ")]>.,;*"

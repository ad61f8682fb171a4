package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type chatCompletionResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// stepsResponse is the Perplexity web answer shape: the final step carries the answer.
type stepsResponse struct {
	Text []struct {
		StepType string          `json:"step_type"`
		Content  json.RawMessage `json:"content"`
	} `json:"text"`
}

// AnswerText interprets a response body. HTML is flattened to text, chat completions
// yield the first choice, Perplexity step lists yield the FINAL answer. Anything else
// returns a *ParseError with the raw body as text.
func AnswerText(body []byte, contentType string) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", &ParseError{Reason: "empty body"}
	}

	if strings.Contains(contentType, "html") || bytes.HasPrefix(trimmed, []byte("<")) {
		text, err := PlainText(bytes.NewReader(trimmed))
		if err != nil {
			return "", &ParseError{Raw: string(trimmed), Reason: err.Error()}
		}
		return text, nil
	}

	var chat chatCompletionResponse
	if err := json.Unmarshal(trimmed, &chat); err == nil && len(chat.Choices) > 0 {
		content := strings.TrimSpace(chat.Choices[0].Message.Content)
		if content == "" {
			return "", &ParseError{Raw: string(trimmed), Reason: "empty answer"}
		}
		return content, nil
	}

	var steps stepsResponse
	if err := json.Unmarshal(trimmed, &steps); err == nil {
		for _, step := range steps.Text {
			if step.StepType != "FINAL" {
				continue
			}
			var content struct {
				Answer string `json:"answer"`
			}
			if err := json.Unmarshal(step.Content, &content); err == nil && content.Answer != "" {
				return unescapeRaw(content.Answer), nil
			}
		}
	}

	return "", &ParseError{Raw: unescapeRaw(string(trimmed)), Reason: "unrecognized response shape"}
}

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, dt, dd, td, pre"

// PlainText flattens an HTML document into blank-line separated blocks, one per
// innermost block element. Link targets are kept next to their text so URLs survive.
func PlainText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if strings.HasPrefix(href, "http") && !strings.Contains(sel.Text(), href) {
			sel.SetText(strings.TrimSpace(sel.Text()) + " " + href)
		}
	})

	var blocks []string
	doc.Find(blockSelector).Each(func(i int, sel *goquery.Selection) {
		if sel.Find(blockSelector).Length() > 0 {
			return
		}
		if text := collapseLines(sel.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})

	if len(blocks) == 0 {
		return collapseLines(doc.Text()), nil
	}
	return strings.Join(blocks, "\n\n"), nil
}

// collapseLines trims every line and drops empty ones.
func collapseLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/ai-events/internal/logger"
	"github.com/pfrederiksen/ai-events/internal/search"
)

const (
	UserAgent = search.UserAgent
	Timeout   = 30 * time.Second

	// maxPageSize caps how much of a page is read.
	maxPageSize = 5 << 20
)

// Scraper handles fetching and flattening event calendar pages
type Scraper struct {
	client *http.Client
}

// New creates a new Scraper instance
func New() *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
	}
}

// Search fetches pageURL and returns its text content.
func (s *Scraper) Search(ctx context.Context, pageURL string) (string, error) {
	if !IsPageURL(pageURL) {
		return "", fmt.Errorf("not a page URL: %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", fmt.Errorf("reading page: %w", err)
	}

	text, err := pageText(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	logger.Debug("Page fetched", logger.Fields{
		"url":   pageURL,
		"bytes": len(body),
	})
	return text, nil
}

// pageText flattens HTML and passes other text through unchanged.
func pageText(body []byte, contentType string) (string, error) {
	ct := strings.ToLower(contentType)
	trimmed := bytes.TrimSpace(body)
	if !strings.Contains(ct, "html") && !bytes.HasPrefix(trimmed, []byte("<")) {
		return string(body), nil
	}

	text, err := parseBlocks(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if text == "" {
		return search.PlainText(bytes.NewReader(body))
	}
	return text, nil
}

const headingSelector = "h1, h2, h3, h4"

// parseBlocks groups each heading with the sibling elements that follow it, so an
// event card (title heading, date line, link) becomes one blank-line separated block.
func parseBlocks(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav").Remove()
	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if strings.HasPrefix(href, "http") && !strings.Contains(sel.Text(), href) {
			sel.SetText(strings.TrimSpace(sel.Text()) + " " + href)
		}
	})

	var blocks []string
	doc.Find(headingSelector).Each(func(i int, heading *goquery.Selection) {
		lines := []string{squash(heading.Text())}

		heading.NextUntil(headingSelector).Each(func(j int, sibling *goquery.Selection) {
			// a sibling holding its own headings is a separate section
			if sibling.Find(headingSelector).Length() > 0 {
				return
			}
			for _, line := range strings.Split(sibling.Text(), "\n") {
				if line = squash(line); line != "" {
					lines = append(lines, line)
				}
			}
		})

		if lines[0] != "" {
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	})

	return strings.Join(blocks, "\n\n"), nil
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsPageURL reports whether q is an http(s) URL rather than a search query.
func IsPageURL(q string) bool {
	q = strings.TrimSpace(q)
	return strings.HasPrefix(q, "http://") || strings.HasPrefix(q, "https://")
}

// Router sends page URLs to Pages and everything else to Queries.
type Router struct {
	Queries search.Searcher
	Pages   search.Searcher
}

// Search dispatches q to the matching searcher.
func (r Router) Search(ctx context.Context, q string) (string, error) {
	if IsPageURL(q) && r.Pages != nil {
		return r.Pages.Search(ctx, q)
	}
	return r.Queries.Search(ctx, q)
}

package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/ai-events/internal/event"
	"github.com/pfrederiksen/ai-events/internal/logger"
)

const (
	telegramAPIBaseURL = "https://api.telegram.org/bot"
	telegramTimeout    = 10 * time.Second

	// maxMessageLen is the Bot API limit for one message.
	maxMessageLen = 4096
)

// TelegramNotifier posts a weekly digest to a Telegram chat
type TelegramNotifier struct {
	botToken   string
	chatID     string
	baseURL    string
	httpClient *http.Client
}

// NewTelegramNotifier creates a Telegram notifier using environment variables
// Required environment variables:
// - TELEGRAM_BOT_TOKEN
// - TELEGRAM_CHAT_ID
func NewTelegramNotifier() (*TelegramNotifier, error) {
	return NewTelegramNotifierWithToken(os.Getenv("TELEGRAM_BOT_TOKEN"), os.Getenv("TELEGRAM_CHAT_ID"))
}

// NewTelegramNotifierWithToken creates a Telegram notifier for chatID.
func NewTelegramNotifierWithToken(botToken, chatID string) (*TelegramNotifier, error) {
	if botToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if chatID == "" {
		return nil, fmt.Errorf("chat ID is required")
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  telegramAPIBaseURL,
		httpClient: &http.Client{
			Timeout: telegramTimeout,
		},
	}, nil
}

// Notify sends the events as one digest, split into several messages when long.
func (n *TelegramNotifier) Notify(ctx context.Context, events []event.CanonicalRecord) error {
	for _, msg := range splitMessage(FormatDigest(events), maxMessageLen) {
		if err := n.sendMessage(ctx, msg); err != nil {
			logger.IncrCounter("notify.failures")
			return err
		}
		logger.IncrCounter("notify.posted")
	}
	return nil
}

// sendMessage sends a text message to the configured chat
func (n *TelegramNotifier) sendMessage(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	url := fmt.Sprintf("%s%s/sendMessage", n.baseURL, n.botToken)

	payload := map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}

	return nil
}

// FormatDigest formats events as an HTML digest grouped by day
func FormatDigest(events []event.CanonicalRecord) string {
	if len(events) == 0 {
		return "No AI events found this week."
	}

	byDay := make(map[time.Time][]event.CanonicalRecord)
	for _, evt := range events {
		day := evt.Day
		if day.IsZero() {
			day = event.ParseDate(evt.Date)
		}
		byDay[day] = append(byDay[day], evt)
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var msg strings.Builder
	fmt.Fprintf(&msg, "🤖 <b>AI events this week</b> • %d event%s\n", len(events), pluralize(len(events)))

	for _, day := range days {
		label := "Date unknown"
		if !day.IsZero() {
			label = day.Format("Monday, January 2")
		}
		fmt.Fprintf(&msg, "\n📅 <b>%s</b>\n", label)

		for _, evt := range byDay[day] {
			title := html.EscapeString(evt.Title)
			if evt.URL != "" {
				title = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(evt.URL), title)
			}
			fmt.Fprintf(&msg, "  • %s (%s, %s)", title, evt.Category, evt.Format)
			if evt.Time != "" {
				fmt.Fprintf(&msg, " %s", html.EscapeString(evt.Time))
			}
			msg.WriteString("\n")
		}
	}

	return msg.String()
}

// splitMessage splits text on line boundaries into chunks of at most limit bytes.
// A single line longer than limit is cut with cutPoint.
func splitMessage(text string, limit int) []string {
	var chunks []string
	var current strings.Builder

	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			cut := cutPoint(line, limit)
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if current.Len()+len(line) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// cutPoint returns the largest offset <= limit that splits s on a rune boundary and
// outside an HTML tag. It is always > 0.
func cutPoint(s string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if open := strings.LastIndexByte(s[:cut], '<'); open > 0 && open > strings.LastIndexByte(s[:cut], '>') {
		cut = open
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(s)
		cut = size
	}
	return cut
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

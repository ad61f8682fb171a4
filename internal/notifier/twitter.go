package notifier

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/pfrederiksen/ai-events/internal/event"
	"github.com/pfrederiksen/ai-events/internal/logger"
)

const (
	maxTweetLen = 280
	tweetDelay  = 2 * time.Second
)

// TwitterNotifier posts events to Twitter
type TwitterNotifier struct {
	client *twitter.Client
	delay  time.Duration
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	return NewTwitterNotifierWithClient(config.Client(oauth1.NoContext, token)), nil
}

// NewTwitterNotifierWithClient creates a notifier on an already authenticated client.
func NewTwitterNotifierWithClient(httpClient *http.Client) *TwitterNotifier {
	return &TwitterNotifier{
		client: twitter.NewClient(httpClient),
		delay:  tweetDelay,
	}
}

// Notify posts tweets for each event
func (n *TwitterNotifier) Notify(ctx context.Context, events []event.CanonicalRecord) error {
	for i, evt := range events {
		tweet := formatTweet(evt)

		if _, _, err := n.client.Statuses.Update(tweet, nil); err != nil {
			logger.IncrCounter("notify.failures")
			return fmt.Errorf("failed to post tweet for event %s: %w", evt.ID, err)
		}
		logger.IncrCounter("notify.posted")
		logger.Debug("Tweet posted", logger.Fields{"event_id": evt.ID, "title": evt.Title})

		// Rate limiting: wait between tweets
		if i < len(events)-1 && n.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.delay):
			}
		}
	}

	return nil
}

// formatTweet formats an event as a tweet
func formatTweet(evt event.CanonicalRecord) string {
	var b strings.Builder
	b.WriteString("🤖 AI event this week!\n\n")
	fmt.Fprintf(&b, "📍 %s\n", evt.Title)

	when := evt.Date
	if !evt.Day.IsZero() {
		when = evt.Day.Format("Monday, January 2, 2006")
	}
	if evt.Time != "" {
		when += " at " + evt.Time
	}
	fmt.Fprintf(&b, "📅 %s\n", when)

	if evt.Location != "" {
		fmt.Fprintf(&b, "🏢 %s\n", evt.Location)
	}
	fmt.Fprintf(&b, "🏷️ %s (%s)\n", evt.Category, evt.Format)

	if evt.URL != "" {
		fmt.Fprintf(&b, "\n🔗 %s\n", evt.URL)
	}
	b.WriteString("\n#AI #AIEvents")

	return truncateTweet(b.String())
}

// truncateTweet keeps a tweet within the character limit, counting runes.
func truncateTweet(tweet string) string {
	runes := []rune(tweet)
	if len(runes) <= maxTweetLen {
		return tweet
	}
	return string(runes[:maxTweetLen-3]) + "..."
}

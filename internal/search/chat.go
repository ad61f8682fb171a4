package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	PerplexityBaseURL = "https://api.perplexity.ai"
	OpenAIBaseURL     = "https://api.openai.com/v1"
	UserAgent         = "ai-events-cli/1.0 (github.com/pfrederiksen/ai-events)"
)

const searchSystemPrompt = "You are a research assistant that finds upcoming technology events. " +
	"List each event with its title, full date, location and official URL."

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// ChatClient talks to an OpenAI-compatible /chat/completions endpoint.
type ChatClient struct {
	endpoint   string
	model      string
	apiKey     string
	maxRetries int
	http       *http.Client

	// InitialInterval is the first backoff delay between retries.
	InitialInterval time.Duration
}

// NewChatClient creates a client for baseURL (e.g. PerplexityBaseURL).
func NewChatClient(baseURL, model, apiKey string, timeout time.Duration, maxRetries int) *ChatClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &ChatClient{
		endpoint:   strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/chat/completions",
		model:      model,
		apiKey:     apiKey,
		maxRetries: maxRetries,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		InitialInterval: 500 * time.Millisecond,
	}
}

// Search sends query with a research system prompt and returns the answer text.
func (c *ChatClient) Search(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", errors.New("empty query")
	}
	return c.chat(ctx, []Message{
		{Role: "system", Content: searchSystemPrompt},
		{Role: "user", Content: query},
	})
}

// Complete sends prompt as a single user message.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.chat(ctx, []Message{{Role: "user", Content: prompt}})
}

func (c *ChatClient) chat(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	body, contentType, err := c.post(ctx, payload)
	if err != nil {
		return "", err
	}
	return AnswerText(body, contentType)
}

// post sends payload, retrying network errors, 429 and 5xx responses.
func (c *ChatClient) post(ctx context.Context, payload []byte) ([]byte, string, error) {
	var (
		body        []byte
		contentType string
	)

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", UserAgent)
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}

		body = data
		contentType = resp.Header.Get("Content-Type")
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.InitialInterval
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.maxRetries)), ctx)

	if err := backoff.Retry(op, b); err != nil {
		return nil, "", err
	}
	return body, contentType, nil
}

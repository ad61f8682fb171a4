package search

import (
	"fmt"

	"github.com/pfrederiksen/ai-events/internal/config"
)

// NewSearcher builds the configured search backend.
func NewSearcher(cfg config.ProviderConfig) (Searcher, error) {
	baseURL := cfg.BaseURL
	switch cfg.Provider {
	case config.ProviderPerplexity:
		if baseURL == "" {
			baseURL = PerplexityBaseURL
		}
	case config.ProviderOpenAI:
		if baseURL == "" {
			baseURL = OpenAIBaseURL
		}
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}
	return NewChatClient(baseURL, cfg.Model, cfg.APIKey, cfg.Timeout, cfg.MaxRetries), nil
}

// NewCompleter builds the configured cleanup backend. It returns nil for provider "none".
func NewCompleter(cfg config.ProviderConfig) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderOpenAI:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = OpenAIBaseURL
		}
		return NewChatClient(baseURL, cfg.Model, cfg.APIKey, cfg.Timeout, cfg.MaxRetries), nil
	case config.ProviderAnthropic:
		return NewAnthropicCompleter(cfg.BaseURL, cfg.Model, cfg.APIKey, cfg.Timeout, cfg.MaxRetries), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

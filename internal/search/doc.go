// Package search provides the external search and completion collaborators used by
// the pipeline.
//
// A Searcher answers a natural-language query with free text; a Completer rewrites text
// given a prompt. ChatClient implements both against OpenAI-compatible chat completion
// endpoints (Perplexity, OpenAI) with exponential backoff on transient failures.
// AnthropicCompleter implements Completer with the Anthropic SDK. Responses that cannot
// be interpreted are reported as *ParseError carrying the raw text, so callers can fall
// back to extracting from it directly.
package search

// Package llm abstracts the text-generation capability behind a single
// interface with two implementations: a networked OpenAI client and a
// deterministic static provider for tests and offline use.
package llm

import (
	"context"
	"fmt"
)

// Request carries the context bag for one generation call.
type Request struct {
	Language    string
	Style       string
	MaxTokens   int
	Temperature float64
}

// Response is the result of one generation call.
type Response struct {
	Content    string
	Provider   string
	Model      string
	TokensUsed int64
}

// Provider is the text-generation capability. Implementations must treat
// every call as independent; the caller owns retries and cancellation via
// ctx.
type Provider interface {
	Generate(ctx context.Context, prompt string, req Request) (*Response, error)
}

// Config selects and configures a provider.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// New builds a provider by name. Provider names come from configuration;
// an unknown name is an error, not a fallback.
func New(name string, cfg Config) (Provider, error) {
	switch name {
	case "openai":
		return NewOpenAI(cfg)
	case "static", "mock":
		return NewStatic(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: openai, static)", name)
	}
}

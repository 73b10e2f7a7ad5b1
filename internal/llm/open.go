// Package llm provides the LLM collaborator used by the agent loop.
package llm

import (
	"context"
	"fmt"
	"strings"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderCopilot   = "copilot"
)

// Options selects and configures a backend.
type Options struct {
	Provider        string
	Model           string
	APIKey          string
	MaxOutputTokens int
}

// Open creates the client for opts.Provider. The returned cleanup func must
// be called when the client is no longer needed.
func Open(ctx context.Context, opts Options) (Client, func(), error) {
	noop := func() {}

	switch strings.ToLower(opts.Provider) {
	case ProviderGemini, "":
		c, err := NewGeminiClient(ctx, opts.APIKey, opts.Model, opts.MaxOutputTokens)
		if err != nil {
			return nil, noop, err
		}
		return c, noop, nil

	case ProviderAnthropic:
		c, err := NewAnthropicClient(opts.APIKey, opts.Model, opts.MaxOutputTokens)
		if err != nil {
			return nil, noop, err
		}
		return c, noop, nil

	case ProviderCopilot:
		c := NewCopilotClient(opts.Model)
		if err := c.Start(ctx); err != nil {
			return nil, noop, err
		}
		return c, func() { _ = c.Stop() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown LLM provider %q (want %s, %s or %s)",
			opts.Provider, ProviderGemini, ProviderAnthropic, ProviderCopilot)
	}
}

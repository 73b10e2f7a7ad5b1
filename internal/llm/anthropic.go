package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = string(anthropic.ModelClaudeSonnet4_5)

// AnthropicClient implements Client with the Anthropic Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicClient creates an Anthropic-backed client.
func NewAnthropicClient(apiKey, model string, maxOutputTokens int) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required (set ANTHROPIC_API_KEY)")
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	if maxOutputTokens <= 0 {
		maxOutputTokens = 1024
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: int64(maxOutputTokens),
	}, nil
}

func (a *AnthropicClient) Complete(ctx context.Context, req *Request) (string, error) {
	msgs := mergeRoles(conversation(req))

	params := make([]anthropic.MessageParam, len(msgs))
	for i, msg := range msgs {
		block := anthropic.NewTextBlock(msg.Content)
		switch msg.Role {
		case RoleAssistant:
			params[i] = anthropic.NewAssistantMessage(block)
		default:
			params[i] = anthropic.NewUserMessage(block)
		}
	}

	body := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  params,
	}
	if req.System != "" {
		body.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	slog.Debug("sending anthropic request", "model", a.model, "messages", len(params))

	resp, err := a.client.Messages.New(ctx, body)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	for _, block := range resp.Content {
		if block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic: empty response")
}

package llm

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash-001"

// GeminiClient implements Client with Google's Gemini API.
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, apiKey, model string, maxOutputTokens int) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required (set GEMINI_API_KEY)")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		model:     model,
		maxTokens: int32(maxOutputTokens),
	}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, req *Request) (string, error) {
	msgs := mergeRoles(conversation(req))
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.Role(role)))
	}

	cfg := &genai.GenerateContentConfig{}
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = g.maxTokens
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	slog.Debug("sending gemini request", "model", g.model, "history", len(req.History))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return resp.Text(), nil
}

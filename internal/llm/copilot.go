package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	sdk "github.com/github/copilot-sdk/go"
)

// CopilotClient wraps the GitHub Copilot SDK to implement Client. Each
// Complete call runs in a fresh SDK session that is destroyed afterwards,
// since the agent owns the conversation history.
type CopilotClient struct {
	sdk     *sdk.Client
	model   string
	mu      sync.Mutex
	started bool
}

// NewCopilotClient creates a CopilotClient that uses the given model.
func NewCopilotClient(model string) *CopilotClient {
	return &CopilotClient{model: model}
}

// Start initializes the underlying Copilot SDK client.
func (c *CopilotClient) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	c.sdk = sdk.NewClient(nil)
	if err := c.sdk.Start(ctx); err != nil {
		return fmt.Errorf("starting copilot SDK: %w", err)
	}
	c.started = true
	slog.Info("copilot LLM client started", "model", c.model)
	return nil
}

// Stop shuts down the SDK client.
func (c *CopilotClient) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sdk == nil {
		return nil
	}
	c.started = false
	return c.sdk.Stop()
}

func (c *CopilotClient) Complete(ctx context.Context, req *Request) (string, error) {
	c.mu.Lock()
	started := c.started
	client := c.sdk
	c.mu.Unlock()

	if !started {
		return "", fmt.Errorf("copilot client not started")
	}

	session, err := client.CreateSession(ctx, &sdk.SessionConfig{
		Model:               c.model,
		OnPermissionRequest: sdk.PermissionHandler.ApproveAll,
	})
	if err != nil {
		return "", fmt.Errorf("creating copilot session: %w", err)
	}
	defer func() {
		if err := session.Destroy(); err != nil {
			slog.Debug("destroying copilot session", "error", err)
		}
	}()

	slog.Debug("sending prompt via copilot SDK", "session", session.SessionID)

	resp, err := session.SendAndWait(ctx, sdk.MessageOptions{
		Prompt: RenderPrompt(req),
	})
	if err != nil {
		return "", fmt.Errorf("sending prompt: %w", err)
	}

	var content string
	if resp != nil && resp.Data.Content != nil {
		content = *resp.Data.Content
	}
	return content, nil
}

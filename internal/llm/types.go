package llm

import "context"

// Role is the speaker of a history message from the model's point of view.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation history sent to the model.
// Content is already label-encoded by the caller.
type Message struct {
	Role    Role
	Content string
}

// Request is everything the model sees for one turn.
type Request struct {
	// System holds the agent's standing instructions.
	System string
	// History is the full conversation before Input, oldest first.
	History []Message
	// Input is the current user query or command output.
	Input string
}

// Client abstracts a text-completion LLM for testability.
type Client interface {
	// Complete sends the request and returns the model's raw text reply.
	Complete(ctx context.Context, req *Request) (string, error)
}

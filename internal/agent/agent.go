// Package agent runs the conversation loop: it sends the history to the
// model, executes the commands the model asks for, holds dangerous ones for
// the user's approval and stops at a final answer or the iteration cap.
//
//	a, err := agent.New(client, exec, agent.WithMaxIterations(10))
//	res := a.Ask(ctx, sess, "which databases exist?")
//	if res.Status == agent.StatusConfirmationRequired {
//		res = a.Confirm(ctx, sess, true)
//	}
package agent

import (
	"fmt"

	"github.com/florinato/mongoagent/internal/llm"
	"github.com/florinato/mongoagent/internal/prompts"
	"github.com/florinato/mongoagent/internal/protocol"
	"github.com/florinato/mongoagent/internal/security"
)

// DefaultMaxIterations bounds model round-trips per user request.
const DefaultMaxIterations = 10

// Status is the terminal state of one Ask or Confirm call.
type Status string

const (
	StatusCompleted            Status = "completed"
	StatusConfirmationRequired Status = "confirmation_required"
	StatusCancelled            Status = "cancelled"
	StatusError                Status = "error"
)

// Result is the single outcome of advancing a conversation.
type Result struct {
	Status Status
	// Message is the final answer, the error text, or a description of the
	// command awaiting confirmation.
	Message string
	// Command is set when Status is StatusConfirmationRequired or
	// StatusCancelled.
	Command string
	// Iterations counts model round-trips for the current user request.
	Iterations int
	// Err holds the cause when Status is StatusError.
	Err error
}

// Decoder splits a model reply into its label and content.
type Decoder func(message string) (protocol.Label, string)

// Option configures an Agent.
type Option func(*Agent)

// WithTrace sets the debug trace sink.
func WithTrace(t Tracer) Option {
	return func(a *Agent) { a.trace = t }
}

// WithAuditor records every executed or declined command.
func WithAuditor(au Auditor) Option {
	return func(a *Agent) { a.auditor = au }
}

// WithMaxIterations overrides DefaultMaxIterations. Values below 1 are
// ignored.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithClassifier replaces the dangerous-command check.
func WithClassifier(isDangerous func(command string) bool) Option {
	return func(a *Agent) { a.isDangerous = isDangerous }
}

// WithDecoder replaces protocol.Decode.
func WithDecoder(d Decoder) Option {
	return func(a *Agent) { a.decode = d }
}

// WithLabelInference guesses a label for unlabeled replies instead of
// failing with ErrProtocolFormat. The guess is heuristic.
func WithLabelInference(enabled bool) Option {
	return func(a *Agent) { a.inferLabels = enabled }
}

// WithDatabase names the default database in the rendered system prompt.
func WithDatabase(name string) Option {
	return func(a *Agent) { a.database = name }
}

// WithSystemPrompt replaces the rendered system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) { a.systemPrompt = prompt }
}

// Agent drives conversations. It holds no per-conversation state and is
// safe for concurrent use across sessions.
type Agent struct {
	llm           llm.Client
	exec          Executor
	trace         Tracer
	auditor       Auditor
	isDangerous   func(string) bool
	decode        Decoder
	inferLabels   bool
	maxIterations int
	systemPrompt  string
	database      string
}

// New creates an Agent. Unless WithSystemPrompt is given, the system prompt
// is rendered from the prompts package.
func New(client llm.Client, exec Executor, opts ...Option) (*Agent, error) {
	a := &Agent{
		llm:           client,
		exec:          exec,
		trace:         nopTracer{},
		isDangerous:   security.IsDangerous,
		decode:        protocol.Decode,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.trace == nil {
		a.trace = nopTracer{}
	}

	if a.systemPrompt == "" {
		p, err := prompts.System(prompts.SystemData{
			MaxIterations:     a.maxIterations,
			DangerousKeywords: security.Keywords(),
			Database:          a.database,
		})
		if err != nil {
			return nil, fmt.Errorf("rendering system prompt: %w", err)
		}
		a.systemPrompt = p
	}
	return a, nil
}

// MaxIterations returns the configured round-trip cap.
func (a *Agent) MaxIterations() int { return a.maxIterations }

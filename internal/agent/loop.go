package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/florinato/mongoagent/internal/audit"
	"github.com/florinato/mongoagent/internal/executor"
	"github.com/florinato/mongoagent/internal/llm"
	"github.com/florinato/mongoagent/internal/protocol"
	"github.com/florinato/mongoagent/internal/security"
	"github.com/florinato/mongoagent/internal/session"
)

// Ask starts a new user request on sess. Any command still awaiting
// confirmation is dropped unexecuted and the iteration count restarts.
func (a *Agent) Ask(ctx context.Context, sess *session.Session, query string) *Result {
	sess.ResetIterations()
	if stale := sess.TakePending(); stale != nil {
		a.trace.Debug("confirmation-dropped", stale.Command)
		sess.Append(session.RoleSystemOutput, "Not executed, the user moved on without confirming: "+stale.Command)
		a.record(ctx, sess, stale.Command, audit.OutcomeDeclined, nil, nil)
	}

	a.trace.Info("user: " + query)
	sess.Append(session.RoleUser, query)
	return a.loop(ctx, sess)
}

// Confirm applies the user's decision on the pending command. An approved
// command runs once, even if it no longer classifies as dangerous, and the
// loop resumes with its output. A declined command never runs.
func (a *Agent) Confirm(ctx context.Context, sess *session.Session, approved bool) *Result {
	pending := sess.TakePending()
	if pending == nil {
		return a.fail(sess, ErrNoPendingConfirmation)
	}
	command := pending.Command

	if !approved {
		a.trace.Debug("confirmation-declined", command)
		sess.Append(session.RoleSystemOutput, "The user declined to run: "+command)
		a.record(ctx, sess, command, audit.OutcomeDeclined, nil, nil)
		return &Result{
			Status:     StatusCancelled,
			Message:    "Command execution declined by user: " + command,
			Command:    command,
			Iterations: sess.Iterations(),
		}
	}

	a.trace.Debug("confirmation-approved", command)
	if !a.isDangerous(command) {
		a.trace.Debug("confirmation-reclassified", "approved command no longer looks dangerous, running it anyway: "+command)
	}
	if res := a.runCommand(ctx, sess, command); res != nil {
		return res
	}
	if sess.Iterations() >= a.maxIterations {
		turns := sess.Turns()
		output := turns[len(turns)-1].Content
		return a.fail(sess, fmt.Errorf("%w: no final answer after %d model calls; the approved command %q ran and returned:\n%s",
			ErrIterationLimit, a.maxIterations, command, output))
	}
	return a.loop(ctx, sess)
}

// loop alternates model calls and command executions until a terminal
// state. The input for each model call is the last turn of sess.
func (a *Agent) loop(ctx context.Context, sess *session.Session) *Result {
	for {
		if sess.Iterations() >= a.maxIterations {
			return a.fail(sess, fmt.Errorf("%w: no final answer after %d model calls", ErrIterationLimit, a.maxIterations))
		}
		iteration := sess.NextIteration()

		req := a.request(sess)
		a.trace.Debug("llm-input", req.Input)

		raw, err := a.llm.Complete(ctx, req)
		if err != nil {
			return a.fail(sess, fmt.Errorf("llm call failed: %w", err))
		}
		a.trace.Debug("llm-response", raw)

		label, content := a.decode(raw)
		if label == protocol.LabelNone && a.inferLabels {
			label, content = protocol.InferLabel(raw)
			a.trace.Debug("label-inferred", string(label))
		}

		slog.Debug("model replied", "session", sess.ID(), "iteration", iteration, "label", label)

		switch label {
		case protocol.LabelFinalAnswer:
			sess.Append(session.RoleAgentFinal, content)
			a.trace.Info("agent: " + content)
			return &Result{Status: StatusCompleted, Message: content, Iterations: iteration}

		case protocol.LabelRunCommand:
			if strings.TrimSpace(content) == "" {
				return a.fail(sess, fmt.Errorf("%w: run-command without a command", ErrProtocolFormat))
			}
			sess.Append(session.RoleAgentCommand, content)

			if a.isDangerous(content) {
				sess.SetPending(content)
				a.trace.Debug("confirmation-required", content)
				return &Result{
					Status:     StatusConfirmationRequired,
					Message:    "This command may modify or delete data and needs confirmation: " + content,
					Command:    content,
					Iterations: iteration,
				}
			}
			if res := a.runCommand(ctx, sess, content); res != nil {
				return res
			}

		case protocol.LabelNone:
			return a.fail(sess, fmt.Errorf("%w: %s", ErrProtocolFormat, raw))

		default:
			return a.fail(sess, fmt.Errorf("%w: %q", ErrUnknownLabel, label))
		}
	}
}

// runCommand executes command and appends its output to sess. It returns a
// terminal result only when the command could not be run.
func (a *Agent) runCommand(ctx context.Context, sess *session.Session, command string) *Result {
	a.trace.Debug("run-command", command)

	res, err := a.exec.Execute(ctx, command)
	if err != nil {
		a.record(ctx, sess, command, audit.OutcomeFailed, nil, err)
		return a.fail(sess, err)
	}

	out := res.Output()
	a.trace.Debug("command-output", out)
	sess.Append(session.RoleSystemOutput, out)
	a.record(ctx, sess, command, audit.OutcomeExecuted, res, nil)
	return nil
}

func (a *Agent) request(sess *session.Session) *llm.Request {
	turns := sess.Turns()
	req := &llm.Request{System: a.systemPrompt}
	if len(turns) == 0 {
		return req
	}

	last := len(turns) - 1
	req.History = make([]llm.Message, 0, last)
	for _, t := range turns[:last] {
		req.History = append(req.History, toMessage(t))
	}
	req.Input = toMessage(turns[last]).Content
	return req
}

// toMessage renders a turn the way the model sees it.
func toMessage(t session.Turn) llm.Message {
	switch t.Role {
	case session.RoleAgentCommand:
		return llm.Message{Role: llm.RoleAssistant, Content: protocol.Encode(protocol.LabelRunCommand, t.Content)}
	case session.RoleAgentFinal:
		return llm.Message{Role: llm.RoleAssistant, Content: protocol.Encode(protocol.LabelFinalAnswer, t.Content)}
	case session.RoleSystemOutput:
		return llm.Message{Role: llm.RoleUser, Content: protocol.Encode(protocol.LabelCommandOutput, t.Content)}
	default:
		return llm.Message{Role: llm.RoleUser, Content: protocol.Encode(protocol.LabelUserQuery, t.Content)}
	}
}

func (a *Agent) fail(sess *session.Session, err error) *Result {
	a.trace.Debug("error", err.Error())
	slog.Warn("conversation request failed", "session", sess.ID(), "error", err)
	return &Result{
		Status:     StatusError,
		Message:    err.Error(),
		Iterations: sess.Iterations(),
		Err:        err,
	}
}

func (a *Agent) record(ctx context.Context, sess *session.Session, command string, outcome audit.Outcome, res *executor.Result, err error) {
	if a.auditor == nil {
		return
	}
	keywords := security.MatchedKeywords(command)
	e := audit.Entry{
		SessionID: sess.ID(),
		Command:   command,
		Dangerous: len(keywords) > 0,
		Keywords:  strings.Join(keywords, ","),
		Outcome:   outcome,
	}
	if res != nil {
		e.ExitCode = res.ExitCode
		e.Duration = res.Duration
	}
	if err != nil {
		e.Error = err.Error()
	}
	if err := a.auditor.Record(ctx, e); err != nil {
		slog.Warn("recording audit entry failed", "session", sess.ID(), "error", err)
	}
}

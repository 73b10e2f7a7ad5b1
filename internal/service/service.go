// Package service is the multi-session boundary: it owns the session
// registry and routes each request to a fresh query or to a confirmation
// decision.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/florinato/mongoagent/internal/agent"
	"github.com/florinato/mongoagent/internal/session"
)

// ErrInvalidRequest means a request carried neither a query nor a
// confirmation decision, or a decision that does not match the pending
// command.
var ErrInvalidRequest = errors.New("invalid request")

// Request advances one conversation. Exactly one of Query or a decision
// (Approve, or a non-empty ConfirmedCommand meaning approval) is expected.
type Request struct {
	Query string
	// Approve carries an explicit decision on the pending command.
	Approve *bool
	// ConfirmedCommand, when set, must equal the pending command.
	ConfirmedCommand string
}

// Service runs conversations for many sessions at once. Requests for
// different sessions proceed in parallel; requests for one session are
// serialized.
type Service struct {
	agent    *agent.Agent
	registry *session.Registry
	archive  *session.Archive
}

// Option configures a Service.
type Option func(*Service)

// WithArchive saves every session's transcript after each request.
func WithArchive(a *session.Archive) Option {
	return func(s *Service) { s.archive = a }
}

// WithRegistry replaces the service's own registry.
func WithRegistry(r *session.Registry) Option {
	return func(s *Service) { s.registry = r }
}

func New(a *agent.Agent, opts ...Option) *Service {
	s := &Service{agent: a, registry: session.NewRegistry()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession starts a conversation and returns its id.
func (s *Service) CreateSession() string {
	sess := s.registry.Create()
	slog.Info("session created", "session", sess.ID())
	s.save(sess)
	return sess.ID()
}

// Advance applies req to the session id. Errors are returned only for an
// unknown session or an invalid request; every conversation outcome,
// including failures inside the loop, is reported through the Result.
func (s *Service) Advance(ctx context.Context, id string, req Request) (*agent.Result, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	release := sess.Acquire()
	defer release()

	var res *agent.Result
	switch {
	case req.Approve != nil || req.ConfirmedCommand != "":
		approved := req.Approve == nil || *req.Approve
		pending := sess.Pending()
		if pending == nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, agent.ErrNoPendingConfirmation)
		}
		if req.ConfirmedCommand != "" && req.ConfirmedCommand != pending.Command {
			return nil, fmt.Errorf("%w: confirmed command does not match the pending command %q", ErrInvalidRequest, pending.Command)
		}
		res = s.agent.Confirm(ctx, sess, approved)

	case strings.TrimSpace(req.Query) != "":
		res = s.agent.Ask(ctx, sess, strings.TrimSpace(req.Query))

	default:
		return nil, fmt.Errorf("%w: request must contain a query or a confirmation decision", ErrInvalidRequest)
	}

	slog.Info("conversation advanced", "session", id, "status", res.Status, "iterations", res.Iterations)
	s.save(sess)
	return res, nil
}

// DeleteSession removes a session from the registry. Its archived
// transcript, if any, is kept.
func (s *Service) DeleteSession(id string) error {
	if err := s.registry.Delete(id); err != nil {
		return err
	}
	slog.Info("session deleted", "session", id)
	return nil
}

// History returns the turns of a live session.
func (s *Service) History(id string) ([]session.Turn, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Turns(), nil
}

// Pending returns the command awaiting confirmation in a live session.
func (s *Service) Pending(id string) (*session.Confirmation, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Pending(), nil
}

// Sessions summarizes every live session, oldest first.
func (s *Service) Sessions() []session.Summary {
	live := s.registry.List()
	out := make([]session.Summary, 0, len(live))
	for _, sess := range live {
		sum := session.Summary{
			ID:      sess.ID(),
			Created: sess.CreatedAt(),
			Updated: sess.UpdatedAt(),
			Turns:   sess.Len(),
		}
		if p := sess.Pending(); p != nil {
			sum.Pending = p.Command
		}
		out = append(out, sum)
	}
	return out
}

func (s *Service) save(sess *session.Session) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Save(sess); err != nil {
		slog.Warn("saving transcript failed", "session", sess.ID(), "error", err)
	}
}

// Package session holds conversation state: the ordered turn history, the
// pending confirmation and the per-request iteration counter.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser         Role = "user"
	RoleAgentCommand Role = "agent-command"
	RoleAgentFinal   Role = "agent-final"
	RoleSystemOutput Role = "system-output"
)

// Turn is one entry of the conversation history.
type Turn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// Confirmation is a dangerous command held until the user decides on it.
type Confirmation struct {
	Command     string    `json:"command"`
	RequestedAt time.Time `json:"requested_at"`
}

// Session is one conversation. Its accessors are safe for concurrent use;
// Acquire serializes whole conversation advances.
type Session struct {
	id        string
	createdAt time.Time

	run sync.Mutex

	mu         sync.Mutex
	turns      []Turn
	pending    *Confirmation
	iterations int
	updatedAt  time.Time
}

// New creates a session with a fresh time-ordered id.
func New() *Session {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	now := time.Now()
	return &Session{id: id.String(), createdAt: now, updatedAt: now}
}

func (s *Session) ID() string { return s.id }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Acquire blocks until no other advance is running on this session and
// returns the func that releases it.
func (s *Session) Acquire() (release func()) {
	s.run.Lock()
	return s.run.Unlock
}

// Append adds a turn to the end of the history.
func (s *Session) Append(role Role, content string) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := Turn{Role: role, Content: content, Time: time.Now()}
	s.turns = append(s.turns, t)
	s.updatedAt = t.Time
	return t
}

// Turns returns a copy of the history, oldest first.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// Pending returns the command awaiting confirmation, or nil.
func (s *Session) Pending() *Confirmation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	c := *s.pending
	return &c
}

// SetPending parks command until a decision arrives, replacing any earlier
// one.
func (s *Session) SetPending(command string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &Confirmation{Command: command, RequestedAt: time.Now()}
}

// TakePending clears and returns the pending confirmation.
func (s *Session) TakePending() *Confirmation {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.pending
	s.pending = nil
	return c
}

// Iterations returns how many LLM round-trips the current request used.
func (s *Session) Iterations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iterations
}

// NextIteration counts one LLM round-trip and returns the new total.
func (s *Session) NextIteration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.iterations++
	return s.iterations
}

// ResetIterations starts the count for a new user request.
func (s *Session) ResetIterations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.iterations = 0
}

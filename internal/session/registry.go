package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned for an id the registry does not hold.
var ErrNotFound = errors.New("session not found")

// Registry maps session ids to live sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create registers and returns a new session.
func (r *Registry) Create() *Session {
	s := New()
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.sessions, id)
	return nil
}

// List returns every live session, oldest first.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

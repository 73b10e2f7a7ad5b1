package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted test double for Client. Responses are returned in
// order; once exhausted, DefaultResult is returned for every call.
type MockClient struct {
	mu            sync.Mutex
	Responses     []string
	DefaultResult string
	// Err, when set, fails every call.
	Err error
	// ErrAt fails the call with the given zero-based index.
	ErrAt    map[int]error
	requests []Request
}

// NewMockClient creates a MockClient that replies with responses in order.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{
		Responses:     responses,
		DefaultResult: "final-answer: Mock LLM response",
		ErrAt:         make(map[int]error),
	}
}

func (m *MockClient) Complete(_ context.Context, req *Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.requests)
	recorded := *req
	recorded.History = append([]Message(nil), req.History...)
	m.requests = append(m.requests, recorded)

	if m.Err != nil {
		return "", m.Err
	}
	if err, ok := m.ErrAt[call]; ok {
		return "", err
	}
	if len(m.Responses) > 0 {
		next := m.Responses[0]
		m.Responses = m.Responses[1:]
		return next, nil
	}
	return m.DefaultResult, nil
}

// Requests returns every request received so far.
func (m *MockClient) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Request, len(m.requests))
	copy(result, m.requests)
	return result
}

// CallCount returns how many times Complete was called.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

package agent

//go:generate mockgen -source=deps.go -destination=mock_deps_test.go -package=agent

import (
	"context"

	"github.com/florinato/mongoagent/internal/audit"
	"github.com/florinato/mongoagent/internal/executor"
)

// Executor runs one database shell command.
type Executor interface {
	Execute(ctx context.Context, command string) (*executor.Result, error)
}

// Auditor records executed and declined commands.
type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Tracer receives the debug trace of every exchange.
type Tracer interface {
	Debug(label, text string)
	Info(text string)
}

type nopTracer struct{}

func (nopTracer) Debug(string, string) {}
func (nopTracer) Info(string)          {}

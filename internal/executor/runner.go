package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

//go:generate mockgen -source=runner.go -destination=mock_runner_test.go -package=executor

// Runner starts an external process and waits for it to exit.
type Runner interface {
	// Run executes name with args. env entries ("KEY=value") are added to the
	// inherited environment. A non-zero exit status is reported in the
	// Result, not as an error; an error means the process could not be run.
	Run(ctx context.Context, env []string, name string, args ...string) (*Result, error)
}

// Result is the captured outcome of one process run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// waitDelay bounds how long Run waits for output pipes after the process is
// killed on context cancellation.
const waitDelay = 5 * time.Second

// ExecRunner runs processes with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, env []string, name string, args ...string) (*Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%w: %s: %w", ErrExecution, name, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrExecution, name, err)
	}
	return res, nil
}

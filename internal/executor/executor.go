// Package executor runs mongosh commands through a shell and captures output.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// ErrExecution means the shell process could not be run at all. A command
// that runs and exits non-zero is not an execution error.
var ErrExecution = errors.New("command execution failed")

// lineCommentRe matches a // comment through end of line. It does not know
// about string literals, so "http://" inside a string is cut too.
var lineCommentRe = regexp.MustCompile(`//.*`)

// URIEnv carries the connection string to the shell.
const URIEnv = "MONGOAGENT_URI"

// Config controls how mongosh is invoked.
type Config struct {
	// Shell interprets the assembled command line (default "sh").
	Shell string
	// Binary is the mongosh executable (default "mongosh").
	Binary string
	// URI is passed to mongosh as its connection string when set.
	URI string
	// Timeout bounds a single execution; zero disables it.
	Timeout time.Duration
}

// Executor evaluates one mongosh script per call.
//
// Each call is a separate mongosh process evaluating a single --eval script,
// so semicolon-chained statements only run as far as mongosh's eval surface
// allows.
type Executor struct {
	cfg    Config
	runner Runner
}

// New creates an Executor. A nil runner uses ExecRunner.
func New(cfg Config, runner Runner) *Executor {
	if cfg.Shell == "" {
		cfg.Shell = "sh"
	}
	if cfg.Binary == "" {
		cfg.Binary = "mongosh"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Executor{cfg: cfg, runner: runner}
}

// Execute strips comments from command, quotes it and runs it through mongosh.
func (e *Executor) Execute(ctx context.Context, command string) (*Result, error) {
	script := StripComments(command)
	line := e.CommandLine(script)

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	slog.Debug("executing mongosh command", "command", script)

	res, err := e.runner.Run(ctx, e.env(), e.cfg.Shell, "-c", line)
	if err != nil {
		if errors.Is(err, ErrExecution) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	slog.Debug("mongosh command finished", "exit_code", res.ExitCode, "duration", res.Duration)
	return res, nil
}

// CommandLine assembles the shell command line for script. The connection
// string is referenced through URIEnv rather than inlined, so credentials
// stay out of the shell's argv. mongosh itself still receives the expanded
// URI as an argument.
func (e *Executor) CommandLine(script string) string {
	parts := []string{e.cfg.Binary, "--quiet"}
	if e.cfg.URI != "" {
		parts = append(parts, `"$`+URIEnv+`"`)
	}
	parts = append(parts, "--eval", Quote(script))
	return strings.Join(parts, " ")
}

func (e *Executor) env() []string {
	if e.cfg.URI == "" {
		return nil
	}
	return []string{URIEnv + "=" + e.cfg.URI}
}

// StripComments removes // comments from every line and trims the result.
func StripComments(command string) string {
	return strings.TrimSpace(lineCommentRe.ReplaceAllString(command, ""))
}

// Quote wraps s for a POSIX shell. Single quotes are used unless s contains a
// single quote and no double quote, in which case double quotes are used with
// the characters the shell would expand escaped. Embedded single quotes in
// the default case are written as '\''.
func Quote(s string) string {
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		r := strings.NewReplacer(`\`, `\\`, `$`, `\$`, "`", "\\`")
		return `"` + r.Replace(s) + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Output renders a Result as the text fed back to the LLM.
func (r *Result) Output() string {
	var b strings.Builder
	stdout := strings.TrimSpace(r.Stdout)
	stderr := strings.TrimSpace(r.Stderr)

	b.WriteString(stdout)
	if stderr != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("stderr: ")
		b.WriteString(stderr)
	}
	if r.ExitCode != 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "(exit status %d)", r.ExitCode)
	}
	if b.Len() == 0 {
		return "(no output)"
	}
	return b.String()
}

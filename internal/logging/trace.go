package logging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	charmlog "github.com/charmbracelet/log"

	"github.com/florinato/mongoagent/internal/store"
)

// DefaultTracePath is the trace file used when none is configured.
const DefaultTracePath = "mongo_agent.log"

// NoTraceYet is returned by Read before anything has been traced.
const NoTraceYet = "The trace file does not exist yet."

const traceTimeFormat = "2006-01-02 15:04:05.000"

// Trace is the debug trace file. A nil *Trace discards everything, so
// callers never need to check whether tracing is enabled.
type Trace struct {
	path   string
	file   *os.File
	logger *charmlog.Logger
}

// OpenTrace opens the trace file at path for appending. With reset the
// previous contents are discarded first.
func OpenTrace(path string, reset bool) (*Trace, error) {
	if path == "" {
		path = DefaultTracePath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating trace directory: %w", err)
		}
	}

	if reset {
		err := store.WithLock(path, store.DefaultLockTimeout, func() error {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("resetting trace %s: %w", path, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening trace %s: %w", path, err)
	}

	logger := charmlog.NewWithOptions(&onceWarnWriter{w: f, path: path}, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      traceTimeFormat,
		Level:           charmlog.DebugLevel,
	})
	logger.SetFormatter(charmlog.TextFormatter)

	return &Trace{path: path, file: f, logger: logger}, nil
}

// Debug records a labeled payload. Continuation lines are indented so
// multi-line command output stays readable.
func (t *Trace) Debug(label, text string) {
	if t == nil {
		return
	}
	t.logger.Debug(formatDebug(label, text))
}

func formatDebug(label, text string) string {
	prefix := "[" + label + "]: "
	indent := "\n" + strings.Repeat(" ", len(prefix))
	return prefix + strings.ReplaceAll(text, "\n", indent)
}

// Info records a plain conversation line.
func (t *Trace) Info(text string) {
	if t == nil {
		return
	}
	t.logger.Info(text)
}

// Path returns the absolute trace location.
func (t *Trace) Path() string {
	if t == nil {
		return ""
	}
	if abs, err := filepath.Abs(t.path); err == nil {
		return abs
	}
	return t.path
}

// Read returns the whole trace.
func (t *Trace) Read() (string, error) {
	if t == nil {
		return NoTraceYet, nil
	}
	return ReadTrace(t.path)
}

func (t *Trace) Close() error {
	if t == nil {
		return nil
	}
	return t.file.Close()
}

// ReadTrace returns the contents of the trace file at path.
func ReadTrace(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NoTraceYet, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading trace %s: %w", path, err)
	}
	return string(data), nil
}

// onceWarnWriter swallows write errors so tracing never interrupts the
// conversation, reporting only the first one.
type onceWarnWriter struct {
	w    *os.File
	path string
	once sync.Once
}

func (o *onceWarnWriter) Write(p []byte) (int, error) {
	n, err := o.w.Write(p)
	if err != nil {
		o.once.Do(func() {
			slog.Warn("writing trace failed, further errors suppressed", "path", o.path, "error", err)
		})
		return len(p), nil
	}
	return n, nil
}

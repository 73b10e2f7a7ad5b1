// Package logging configures process logging and the append-only debug
// trace that records every exchange with the model and the database.
package logging

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Setup installs the default slog logger, backed by charmbracelet/log on
// stderr. Non-terminal output is written as JSON.
func Setup(verbose bool) {
	slog.SetDefault(slog.New(newHandler(os.Stderr, verbose, isTerminal())))
}

func newHandler(w io.Writer, verbose, tty bool) *charmlog.Logger {
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
	})

	if verbose {
		handler.SetLevel(charmlog.DebugLevel)
	} else {
		handler.SetLevel(charmlog.InfoLevel)
	}

	if !tty {
		handler.SetFormatter(charmlog.JSONFormatter)
	}
	return handler
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

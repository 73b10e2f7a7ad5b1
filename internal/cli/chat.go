package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with the agent. Each line is a request;
type exit, quit or salir to leave. Arrow keys browse previous requests.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		line := newLineReader()
		defer line.Close()

		out := cmd.OutOrStdout()
		pr := newPrinter(out)
		id := a.service.CreateSession()
		fmt.Fprintln(out, "Connected. Ask about your MongoDB data, or type exit to leave.")

		for {
			input, err := line.Prompt(promptStyle.Render("mongo> "))
			if err != nil {
				if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
					fmt.Fprintln(out)
					return nil
				}
				return err
			}
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			line.AppendHistory(input)
			if isExitWord(input) {
				return nil
			}

			if _, err := converse(cmd.Context(), a.service, id, input, huhConfirm, pr); err != nil {
				pr.errorf("%v", err)
			}
		}
	},
}

// lineReader is a liner.State that persists its history on Close.
type lineReader struct {
	*liner.State
	historyFile string
}

func newLineReader() *lineReader {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)

	r := &lineReader{State: st}
	if dir, err := os.UserConfigDir(); err == nil {
		r.historyFile = filepath.Join(dir, "mongoagent", "chat_history")
		if f, err := os.Open(r.historyFile); err == nil {
			_, _ = st.ReadHistory(f)
			f.Close()
		}
	}
	return r
}

func (r *lineReader) Close() {
	if r.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(r.historyFile), 0o755); err == nil {
			if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
				_, _ = r.WriteHistory(f)
				f.Close()
			}
		}
	}
	_ = r.State.Close()
}

package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/florinato/mongoagent/internal/audit"
)

var (
	auditLimitFlag   int
	auditSessionFlag string
)

func init() {
	auditCmd.Flags().IntVar(&auditLimitFlag, "limit", 20, "Maximum number of entries")
	auditCmd.Flags().StringVar(&auditSessionFlag, "session", "", "Only show commands from this session")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List executed and declined commands",
	Long: `Display the audit trail in a table, newest first.

Every command the agent ran, failed to run, or was refused permission to
run is recorded with its session, exit code and matched danger keywords.`,
	Example: `  mongoagent audit
  mongoagent audit --limit 50 --session 0192...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openAudit(appConfig)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(cmd.Context(), audit.Filter{
			SessionID: auditSessionFlag,
			Limit:     auditLimitFlag,
		})
		if err != nil {
			return fmt.Errorf("listing audit entries: %w", err)
		}

		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No commands recorded yet.")
			return nil
		}
		renderAudit(cmd.OutOrStdout(), entries)
		return nil
	},
}

func renderAudit(w io.Writer, entries []audit.Entry) {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		exit := strconv.Itoa(e.ExitCode)
		if e.Outcome == audit.OutcomeDeclined {
			exit = "-"
		}
		rows = append(rows, []string{
			e.Time.Local().Format("2006-01-02 15:04:05"),
			shortID(e.SessionID),
			string(e.Outcome),
			exit,
			e.Keywords,
			truncate(e.Command, 60),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TIME", "SESSION", "OUTCOME", "EXIT", "KEYWORDS", "COMMAND").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Fprintln(w, t)
}

// shortID keeps the random tail of a UUIDv7, which distinguishes sessions
// created close together.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

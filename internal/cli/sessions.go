package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/florinato/mongoagent/internal/config"
	"github.com/florinato/mongoagent/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Browse archived conversation transcripts",
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsRemoveCmd)
}

func transcriptArchive() (*session.Archive, error) {
	if !appConfig.Transcripts.Enabled {
		return nil, errors.New("transcripts are disabled (transcripts.enabled)")
	}
	return session.NewArchive(config.ExpandHome(appConfig.Transcripts.Dir)), nil
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := transcriptArchive()
		if err != nil {
			return err
		}
		summaries, err := archive.List()
		if err != nil {
			return fmt.Errorf("listing transcripts: %w", err)
		}
		if len(summaries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No transcripts yet.")
			return nil
		}

		headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)

		rows := make([][]string, 0, len(summaries))
		for _, s := range summaries {
			rows = append(rows, []string{
				s.ID,
				s.Created.Local().Format("2006-01-02 15:04"),
				s.Updated.Local().Format("2006-01-02 15:04"),
				fmt.Sprintf("%d", s.Turns),
				truncate(s.Pending, 40),
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "CREATED", "UPDATED", "TURNS", "PENDING").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})

		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := transcriptArchive()
		if err != nil {
			return err
		}
		_, body, err := archive.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), body)
		return nil
	},
}

var sessionsRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := transcriptArchive()
		if err != nil {
			return err
		}
		if err := archive.Remove(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

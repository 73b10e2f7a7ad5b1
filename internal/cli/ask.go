package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/florinato/mongoagent/internal/agent"
)

var askYesFlag bool

func init() {
	askCmd.Flags().BoolVarP(&askYesFlag, "yes", "y", false, "Run dangerous commands without asking")
}

var askCmd = &cobra.Command{
	Use:   "ask <request>",
	Short: "Answer a single request and exit",
	Example: `  mongoagent ask "how many orders were placed today?"
  mongoagent ask --yes "drop the tmp_import collection"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		confirm := huhConfirm
		if askYesFlag {
			confirm = alwaysConfirm
		}

		id := a.service.CreateSession()
		res, err := converse(cmd.Context(), a.service, id, strings.Join(args, " "), confirm, newPrinter(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		if res.Status == agent.StatusError {
			return fmt.Errorf("request failed: %w", res.Err)
		}
		return nil
	},
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/florinato/mongoagent/internal/logging"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print the debug trace",
	Long: `Print the debug trace of the last run: every prompt sent to the model,
every reply, and every command with its output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appConfig.Log.TraceFile
		if path == "" {
			path = logging.DefaultTracePath
		}
		text, err := logging.ReadTrace(path)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

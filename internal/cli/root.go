// Package cli implements the mongoagent command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/florinato/mongoagent/internal/config"
	"github.com/florinato/mongoagent/internal/logging"
)

var (
	verbose    bool
	configPath string
	appConfig  *config.Config
	rootCmd    = &cobra.Command{
		Use:   "mongoagent",
		Short: "Ask MongoDB questions in natural language",
		Long: `mongoagent turns natural-language requests into mongosh commands, runs them
and answers from their output. Destructive commands are never run without
your confirmation.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(verbose)
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			appConfig = cfg
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Additional JSONC config file merged last")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

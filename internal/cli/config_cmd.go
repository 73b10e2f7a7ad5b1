package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/sjson"

	"github.com/florinato/mongoagent/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mongoagent configuration",
	Long:  `Show and modify mongoagent configuration values.`,
}

var (
	configJSONFlag bool
	configUserFlag bool
)

func init() {
	configShowCmd.Flags().BoolVar(&configJSONFlag, "json", false, "Output raw JSON without formatting")
	configSetCmd.Flags().BoolVar(&configUserFlag, "user", false, "Write the user config instead of the project config")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		redacted := appConfig.Redacted()

		var data []byte
		var err error
		if configJSONFlag {
			data, err = json.Marshal(redacted)
		} else {
			data, err = json.MarshalIndent(redacted, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a configuration value using a dotted key path.

The value is written to .mongoagent/mongoagent.jsonc in the current
directory, or to the user config with --user. The file is created if it
does not exist.

Note: JSONC comments are not preserved on write.

Examples:
  mongoagent config set llm.provider anthropic
  mongoagent config set agent.max_iterations 15
  mongoagent config set --user mongo.uri mongodb://localhost:27017`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ProjectPath
		if configUserFlag {
			path = config.UserPath()
			if path == "" {
				return fmt.Errorf("cannot locate the user config directory")
			}
		}

		value := parseValue(args[1])
		if err := setConfigValue(path, args[0], value); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", args[0], value)
		return nil
	},
}

// parseValue types a command-line value: bool, then integer, then float,
// then string.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// setConfigValue writes key=value into the JSONC file at path.
func setConfigValue(path, key string, value any) error {
	existing := []byte("{}")
	if data, err := os.ReadFile(path); err == nil {
		// sjson needs plain JSON, so comments are dropped.
		existing = jsonc.ToJSON(data)
	}

	updated, err := sjson.SetBytes(existing, key, value)
	if err != nil {
		return fmt.Errorf("setting key %q: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, updated, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

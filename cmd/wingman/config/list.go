package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/pkg/config"
)

const listLongDesc string = `List all configuration values.

Displays all configuration keys and their current values from the
config.toml file stored in the .wingman/ directory, defaults included.

Examples:
  wingman config list`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(cmd.OutOrStdout(), configDir)
		},
	}

	return cmd
}

func runList(out io.Writer, configDir string) error {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Fprintf(out, "Using config file: %s\n\n", cfger.GetTarget())

	keys := config.ValidConfigKeys()

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range keys {
		maxLen = max(maxLen, len(k))
	}

	for _, key := range keys {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}

		if value == "" {
			fmt.Fprintf(out, "%-*s = <not set>\n", maxLen, key)
		} else {
			fmt.Fprintf(out, "%-*s = %q\n", maxLen, key, value)
		}
	}

	return nil
}

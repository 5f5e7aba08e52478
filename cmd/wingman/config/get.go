package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/pkg/cliui"
	"github.com/papercomputeco/wingman/pkg/config"
)

const getLongDesc string = `Get a configuration value.

Reads the value for the given key from the config.toml file stored in the
.wingman/ directory, falling back to the default. Keys use dotted notation
matching the TOML section structure.

Examples:
  wingman config get llm.model
  wingman config get client.api_target`

const getShortDesc string = "Get a configuration value"

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "get <key>",
		Short:             getShortDesc,
		Long:              getLongDesc,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runGet(cmd.OutOrStdout(), args[0], configDir)
		},
	}

	return cmd
}

func runGet(out io.Writer, key, configDir string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	printTarget(out, cfger)

	value, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	if value == "" {
		fmt.Fprintf(out, "  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.DimStyle.Render("<not set>"))
	} else {
		fmt.Fprintf(out, "  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.ValueStyle.Render(value))
	}

	return nil
}

package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/pkg/cliui"
	"github.com/papercomputeco/wingman/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file stored in
the .wingman/ directory. Values are checked before they are written: durations
must parse (e.g. "30s"), booleans must be true or false and llm.provider must
be a known backend.

Examples:
  wingman config set llm.provider fake
  wingman config set llm.upstream http://gpu-box:11434
  wingman config set stream.require_done true`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "set <key> <value>",
		Short:             setShortDesc,
		Long:              setLongDesc,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(cmd.OutOrStdout(), args[0], args[1], configDir)
		},
	}

	return cmd
}

func runSet(out io.Writer, key, value, configDir string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	printTarget(out, cfger)

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	fmt.Fprintf(out, "  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	return nil
}

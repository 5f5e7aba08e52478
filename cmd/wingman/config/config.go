// Package configcmder provides the config command for managing persistent
// wingman configuration stored in the .wingman/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/pkg/cliui"
	"github.com/papercomputeco/wingman/pkg/config"
)

const configLongDesc string = `Manage persistent wingman configuration.

Configuration is stored as config.toml in the .wingman/ directory and provides
default values for command flags. CLI flags and WINGMAN_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  api.listen, api.allow_origins, api.keep_alive, api.mcp,
  api.log_file,
  client.api_target,
  llm.provider, llm.upstream, llm.model, llm.timeout,
  storage.sqlite_path, storage.postgres_dsn,
  stream.require_done, stream.idle_timeout

Use subcommands to get, set, or list configuration values:
  wingman config set <key> <value>    Set a configuration value
  wingman config get <key>            Get a configuration value
  wingman config list                 List all configuration values

Examples:
  wingman config set llm.model llama3.1:8b
  wingman config set stream.idle_timeout 60s
  wingman config get llm.model
  wingman config list`

const configShortDesc string = "Manage persistent wingman configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func checkKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func printTarget(out io.Writer, cfger *config.Configer) {
	fmt.Fprintf(out, "\n  %s %s\n\n",
		cliui.KeyStyle.Render("Config file:"),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)
}

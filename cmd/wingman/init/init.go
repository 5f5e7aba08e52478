// Package initcmder provides the init command for initializing a local .wingman
// directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/pkg/cliui"
	"github.com/papercomputeco/wingman/pkg/config"
)

const (
	dirName = ".wingman"
)

const initLongDesc string = `Initialize a new .wingman/ directory in the current working directory.

Creates a local .wingman/ directory that takes precedence over the default
~/.wingman/ directory for configuration, the login session and local
databases. This is useful for keeping separate wingman state per project.

Use --preset to write a config.toml for a known setup:
  ollama     A local Ollama server running llama3.2:1b (default settings)
  offline    Canned answers, no model required

Examples:
  wingman init
  wingman init --preset offline`

const initShortDesc string = "Initialize a local .wingman/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Write a config.toml for a preset ("+strings.Join(config.ValidPresetNames(), ", ")+")")
	_ = cmd.RegisterFlagCompletionFunc("preset", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.ValidPresetNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runInit(out io.Writer, preset string) error {
	var cfg *config.Config
	if preset != "" {
		var err error
		cfg, err = config.PresetConfig(preset)
		if err != nil {
			return err
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		fmt.Fprintf(out, "  %s Already initialized: %s\n", cliui.DimStyle.Render("●"), dir)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("checking .wingman directory: %w", err)
	default:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .wingman directory: %w", err)
		}
		fmt.Fprintf(out, "  %s Initialized .wingman directory: %s\n", cliui.SuccessMark, dir)
	}

	if cfg == nil {
		return nil
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "  %s Wrote %s preset to %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(strings.ToLower(preset)),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)
	return nil
}

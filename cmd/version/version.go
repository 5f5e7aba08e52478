// Package versioncmder
package versioncmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/pkg/utils"
)

func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version of this CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\nSha: %s\nBuilt at: %s\n", utils.Version, utils.Sha, utils.Buildtime)
			return nil
		},
	}

	return cmd
}

// Package lovecmder provides the love command, a playful compatibility
// calculator.
package lovecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/cmd/wingman/cmdutil"
	"github.com/papercomputeco/wingman/pkg/cliui"
	"github.com/papercomputeco/wingman/pkg/dating"
)

const loveLongDesc string = `Calculate the love score of two names.

Just for fun: the same two names always get the same score, in any order.
No login needed.

Examples:
  wingman love Sam Alex
  wingman love "Sam Lee" "Alex Kim"`

const loveShortDesc string = "Calculate the love score of two names"

func NewLoveCmd() *cobra.Command {
	var flags cmdutil.ClientFlags

	cmd := &cobra.Command{
		Use:   "love <name> <name>",
		Short: loveShortDesc,
		Long:  loveLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dating.LoveRequest{Name1: args[0], Name2: args[1]}
			if err := req.Validate(); err != nil {
				return err
			}

			env, err := cmdutil.Load(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			res, err := env.Client.LoveCalculator(ctx, req)
			if err != nil {
				return fmt.Errorf("calculating love score: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n  %s %s %s\n\n",
				cliui.NameStyle.Render(args[0]),
				cliui.DimStyle.Render("+"),
				cliui.NameStyle.Render(args[1]),
			)
			fmt.Fprintf(out, "  %s %s\n", cliui.HeartMeter(res.LoveScore), cliui.HeaderStyle.Render(fmt.Sprintf("%d%%", res.LoveScore)))
			fmt.Fprintf(out, "  %s\n\n", res.Message)
			return nil
		},
	}

	cmdutil.AddClientFlags(cmd, &flags)

	return cmd
}

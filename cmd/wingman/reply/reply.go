// Package replycmder provides the reply command suggesting answers to a
// match's message.
package replycmder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/cmd/wingman/cmdutil"
	"github.com/papercomputeco/wingman/pkg/cliui"
	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/stream"
)

const replyLongDesc string = `Suggest replies to a message from a match.

The message is taken from the arguments, or from stdin when none are given.
Five reply options are printed; with --raw the model output is printed as
it arrives instead.

Examples:
  wingman reply "Pineapple on pizza: yes or no?"
  wingman reply --intention serious --style intellectual "What are you reading?"`

const replyShortDesc string = "Suggest replies to a match"

type replyCommander struct {
	flags cmdutil.ClientFlags

	intention string
	style     string
	raw       bool
}

func NewReplyCmd() *cobra.Command {
	cmder := &replyCommander{}

	cmd := &cobra.Command{
		Use:   "reply [message...]",
		Short: replyShortDesc,
		Long:  replyLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmdutil.AddClientFlags(cmd, &cmder.flags)
	cmd.Flags().StringVarP(&cmder.intention, "intention", "i", string(dating.IntentionDate), "Your goal ("+strings.Join(dating.Values(dating.Intentions), ", ")+")")
	cmd.Flags().StringVarP(&cmder.style, "style", "s", string(dating.StyleCasual), "Reply style ("+strings.Join(dating.Values(dating.Styles), ", ")+")")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the model output as it arrives")

	return cmd
}

func (c *replyCommander) run(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")
	if len(args) == 0 {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading message: %w", err)
		}
		message = string(raw)
	}

	env, err := cmdutil.Load(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	s, err := env.Session()
	if err != nil {
		return err
	}

	req := dating.ReplyRequest{
		UserID:    s.UserID,
		Message:   strings.TrimSpace(message),
		Intention: dating.Intention(c.intention),
		Style:     dating.Style(c.style),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := cmdutil.SignalContext(ctx)
	defer stop()

	out := cmd.OutOrStdout()

	if c.raw {
		_, err := env.Client.Replies(ctx, req, stream.Handlers{
			OnChunk: func(text string) error {
				_, err := io.WriteString(out, text)
				return err
			},
		})
		fmt.Fprintln(out)
		return cmdutil.DescribeError(err)
	}

	var text strings.Builder
	err = cliui.Step(cmd.ErrOrStderr(), "Thinking of replies", func() error {
		_, err := env.Client.Replies(ctx, req, stream.Handlers{
			OnChunk: func(chunk string) error {
				text.WriteString(chunk)
				return nil
			},
		})
		return err
	})
	if err != nil {
		return cmdutil.DescribeError(err)
	}

	fmt.Fprintf(out, "\n%s\n", cliui.Numbered(dating.ParseReplies(text.String())))
	return nil
}

// Package askcmder provides the ask command for one-off questions.
package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/cmd/wingman/cmdutil"
	"github.com/papercomputeco/wingman/pkg/cliui"
	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/session"
	"github.com/papercomputeco/wingman/pkg/stream"
)

const askLongDesc string = `Ask your wingman a single question.

The question is taken from the arguments, or from stdin when none are given.
The answer is streamed as it is generated unless --no-stream or --markdown
is set; --markdown waits for the whole answer and renders it.

When logged in, the question and answer are kept in your history.

Examples:
  wingman ask "How do I keep a conversation going?"
  wingman ask --mode expert --markdown "Plan a first date in the rain"
  cat message.txt | wingman ask`

const askShortDesc string = "Ask a single question"

type askCommander struct {
	flags cmdutil.ClientFlags

	mode     string
	noStream bool
	markdown bool
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: askShortDesc,
		Long:  askLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmdutil.AddClientFlags(cmd, &cmder.flags)
	cmd.Flags().StringVarP(&cmder.mode, "mode", "m", string(dating.ModeBasic), "Chat mode ("+strings.Join(dating.Values(dating.Modes), ", ")+")")
	cmd.Flags().BoolVar(&cmder.noStream, "no-stream", false, "Wait for the whole answer")
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render the answer as markdown")

	return cmd
}

func (c *askCommander) run(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	if len(args) == 0 {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading question: %w", err)
		}
		prompt = string(raw)
	}
	prompt = strings.TrimSpace(prompt)

	req := dating.GenerateRequest{Prompt: prompt, Mode: dating.Mode(c.mode)}
	if err := req.Validate(); err != nil {
		return err
	}

	env, err := cmdutil.Load(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	s, err := env.Session()
	switch {
	case err == nil:
		req.UserID = s.UserID
	case errors.Is(err, session.ErrNotLoggedIn):
		env.Logger.Debug("asking anonymously")
	default:
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := cmdutil.SignalContext(ctx)
	defer stop()

	out := cmd.OutOrStdout()

	if c.noStream || c.markdown {
		var answer string
		err := cliui.Step(cmd.ErrOrStderr(), "Thinking", func() error {
			var err error
			answer, err = env.Client.Generate(ctx, req)
			return err
		})
		if err != nil {
			return cmdutil.DescribeError(err)
		}

		if c.markdown {
			rendered, err := cliui.RenderMarkdown(answer)
			if err != nil {
				env.Logger.Debug("rendering markdown", "error", err)
			}
			answer = rendered
		}
		fmt.Fprintln(out, strings.TrimRight(answer, "\n"))
		return nil
	}

	res, err := env.Client.GenerateStream(ctx, req, stream.Handlers{
		OnChunk: func(text string) error {
			_, err := io.WriteString(out, text)
			return err
		},
	})
	fmt.Fprintln(out)
	if err != nil {
		return cmdutil.DescribeError(err)
	}
	if res.Ending == stream.EndedByEOF {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", cliui.DimStyle.Render("(the answer may be incomplete)"))
	}
	return nil
}

// Package historycmder provides the history command listing stored answers
// and chat windows.
package historycmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/cmd/wingman/cmdutil"
	"github.com/papercomputeco/wingman/pkg/cliui"
	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/utils"
)

const historyLongDesc string = `Show your stored questions and answers, newest first.

With --chats the chat windows are listed instead. --window limits the
answers to one chat window; a prefix of its id is enough.

Examples:
  wingman history
  wingman history --limit 5 --full
  wingman history --chats
  wingman history --window 3f2a9c1e`

const historyShortDesc string = "Show stored answers"

const previewLength = 120

type historyCommander struct {
	flags cmdutil.ClientFlags

	all    bool
	chats  bool
	window string
	limit  int
	full   bool
}

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmdutil.AddClientFlags(cmd, &cmder.flags)
	cmd.Flags().BoolVar(&cmder.all, "all", false, "Show the answers of every user")
	cmd.Flags().BoolVar(&cmder.chats, "chats", false, "List chat windows instead of answers")
	cmd.Flags().StringVarP(&cmder.window, "window", "w", "", "Only show answers of this chat window")
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 20, "Maximum number of entries (0 for no limit)")
	cmd.Flags().BoolVar(&cmder.full, "full", false, "Print whole answers instead of a preview")

	cmd.MarkFlagsMutuallyExclusive("all", "chats")

	return cmd
}

func (c *historyCommander) run(cmd *cobra.Command) error {
	if c.limit < 0 {
		return errors.New("--limit must not be negative")
	}

	env, err := cmdutil.Load(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	var userID int64
	if !c.all {
		s, err := env.Session()
		if err != nil {
			return err
		}
		userID = s.UserID
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if c.chats {
		windows, err := env.Client.ChatWindows(ctx, userID)
		if err != nil {
			return fmt.Errorf("listing chat windows: %w", err)
		}
		c.printWindows(out, windows)
		return nil
	}

	responses, err := env.Client.Responses(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing answers: %w", err)
	}

	if c.window != "" {
		kept := responses[:0]
		for _, r := range responses {
			if strings.HasPrefix(r.ChatWindowID, c.window) {
				kept = append(kept, r)
			}
		}
		responses = kept
	}

	c.printResponses(out, responses)
	return nil
}

func (c *historyCommander) printResponses(out io.Writer, responses []dating.Response) {
	if len(responses) == 0 {
		fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("No answers yet."))
		return
	}

	shown := c.cap(len(responses))
	fmt.Fprintln(out)
	for _, r := range responses[:shown] {
		answer := strings.TrimSpace(r.Response)
		if !c.full {
			answer = utils.Truncate(strings.Join(strings.Fields(answer), " "), previewLength)
		}

		fmt.Fprintf(out, "  %s %s\n", cliui.DimStyle.Render(r.CreatedAt.Local().Format(time.DateTime)), cliui.NameStyle.Render(r.Prompt))
		fmt.Fprintf(out, "  %s\n\n", answer)
	}
	c.printMore(out, len(responses)-shown)
}

func (c *historyCommander) printWindows(out io.Writer, windows []dating.ChatWindow) {
	if len(windows) == 0 {
		fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("No chat windows yet."))
		return
	}

	shown := c.cap(len(windows))
	fmt.Fprintln(out)
	for _, w := range windows[:shown] {
		fmt.Fprintf(out, "  %s  %s %s %s\n",
			cliui.KeyStyle.Render(w.ID),
			cliui.NameStyle.Render(w.Title),
			cliui.ValueStyle.Render(dating.Label(dating.Modes, w.Mode)),
			cliui.DimStyle.Render(w.CreatedAt.Local().Format(time.DateTime)),
		)
	}
	fmt.Fprintln(out)
	c.printMore(out, len(windows)-shown)
}

func (c *historyCommander) cap(n int) int {
	if c.limit == 0 {
		return n
	}
	return min(n, c.limit)
}

func (c *historyCommander) printMore(out io.Writer, hidden int) {
	if hidden > 0 {
		fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("%d more, use --limit 0 to show all", hidden)))
	}
}

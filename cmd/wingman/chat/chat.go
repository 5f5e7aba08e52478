// Package chatcmder provides the chat command for an interactive, streamed
// conversation with the wingman API.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/cmd/wingman/cmdutil"
	"github.com/papercomputeco/wingman/pkg/cliui"
	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/session"
	"github.com/papercomputeco/wingman/pkg/stream"
	"github.com/papercomputeco/wingman/pkg/utils"
)

const chatLongDesc string = `Start an interactive chat with your wingman.

Answers are streamed as they are generated. Ctrl+C stops the answer in
flight and keeps the chat open; /exit or Ctrl+D quits.

Messages are grouped in chat windows. The chat resumes the last window used
unless --new or --window is given.

Modes:
  basic     General dating advice (default)
  expert    A professional dating coach
  alpha     Bold, confident coaching

Commands inside the chat:
  /new [title]    Open a new chat window
  /mode <mode>    Switch the mode
  /exit           Quit

Examples:
  wingman chat
  wingman chat --new --title "Friday date" --mode expert`

const chatShortDesc string = "Chat with your wingman"

type chatCommander struct {
	flags cmdutil.ClientFlags

	mode      string
	windowID  string
	title     string
	newWindow bool

	env     *cmdutil.Env
	session *session.Session
	out     io.Writer
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmdutil.AddClientFlags(cmd, &cmder.flags)
	cmd.Flags().StringVarP(&cmder.mode, "mode", "m", string(dating.ModeBasic), "Chat mode ("+strings.Join(dating.Values(dating.Modes), ", ")+")")
	cmd.Flags().StringVarP(&cmder.windowID, "window", "w", "", "Chat window id to resume")
	cmd.Flags().StringVarP(&cmder.title, "title", "t", "", "Title of a new chat window")
	cmd.Flags().BoolVar(&cmder.newWindow, "new", false, "Open a new chat window")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command) error {
	var err error
	c.env, err = cmdutil.Load(cmd)
	if err != nil {
		return err
	}
	defer c.env.Close()

	c.session, err = c.env.Session()
	if err != nil {
		return err
	}
	c.out = cmd.OutOrStdout()

	if err := (dating.GenerateRequest{Prompt: "-", Mode: dating.Mode(c.mode)}).Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	window, err := c.resolveWindow(ctx)
	if err != nil {
		return err
	}

	// A login or logout in another terminal ends this chat.
	var switched atomic.Bool
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		err := c.env.Sessions.Watch(ctx, func(s *session.Session) {
			if s == nil || s.UserID != c.session.UserID {
				switched.Store(true)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			c.env.Logger.Debug("session watch stopped", "error", err)
		}
	}()
	defer func() {
		cancel()
		<-watchDone
	}()

	fmt.Fprintln(c.out)
	c.printWindow(window)
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. Ctrl+C stops an answer, /exit or Ctrl+D quits."))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(c.out, cliui.UserPrompt)
		if !scanner.Scan() {
			break
		}

		if switched.Load() {
			fmt.Fprintf(c.out, "\n  %s %s\n\n", cliui.WarnStyle.Render("!"), "The session changed in another terminal. Run \"wingman chat\" again.")
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue

		case input == "/exit":
			fmt.Fprintln(c.out)
			return nil

		case input == "/new" || strings.HasPrefix(input, "/new "):
			c.title = strings.TrimSpace(strings.TrimPrefix(input, "/new"))
			window, err = c.openWindow(ctx)
			if err != nil {
				fmt.Fprintf(c.out, "  %s %v\n", cliui.FailMark, err)
				continue
			}
			c.printWindow(window)
			continue

		case strings.HasPrefix(input, "/mode"):
			mode := dating.Mode(strings.TrimSpace(strings.TrimPrefix(input, "/mode")))
			if err := (dating.GenerateRequest{Prompt: "-", Mode: mode}).Validate(); err != nil || mode == "" {
				fmt.Fprintf(c.out, "  %s Mode must be one of %s\n", cliui.FailMark, strings.Join(dating.Values(dating.Modes), ", "))
				continue
			}
			c.mode = string(mode)
			fmt.Fprintf(c.out, "  %s Mode: %s\n", cliui.SuccessMark, cliui.NameStyle.Render(dating.Label(dating.Modes, mode)))
			continue
		}

		c.turn(ctx, window, input)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

// turn streams one answer. Ctrl+C cancels only this answer.
func (c *chatCommander) turn(ctx context.Context, window *dating.ChatWindow, prompt string) {
	turnCtx, stop := cmdutil.SignalContext(ctx)
	defer stop()

	fmt.Fprint(c.out, cliui.AssistantPrompt)

	res, err := c.env.Client.GenerateStream(turnCtx, dating.GenerateRequest{
		Prompt:       prompt,
		UserID:       c.session.UserID,
		ChatWindowID: window.ID,
		Mode:         dating.Mode(c.mode),
	}, stream.Handlers{
		OnChunk: func(text string) error {
			_, err := io.WriteString(c.out, text)
			return err
		},
	})

	switch {
	case err == nil && res.Ending == stream.EndedByEOF:
		fmt.Fprintf(c.out, "\n  %s", cliui.DimStyle.Render("(the answer may be incomplete)"))
	case errors.Is(err, context.Canceled) && ctx.Err() == nil:
		fmt.Fprintf(c.out, " %s", cliui.DimStyle.Render("(stopped)"))
	case err != nil:
		fmt.Fprintf(c.out, "\n  %s %v", cliui.FailMark, cmdutil.DescribeError(err))
	}

	fmt.Fprint(c.out, "\n\n")
}

// resolveWindow picks the chat window: --window, then the session's last
// window, then a new one.
func (c *chatCommander) resolveWindow(ctx context.Context) (*dating.ChatWindow, error) {
	if c.newWindow {
		return c.openWindow(ctx)
	}

	wanted := c.windowID
	if wanted == "" {
		wanted = c.session.ChatWindowID
	}
	if wanted == "" {
		return c.openWindow(ctx)
	}

	windows, err := c.env.Client.ChatWindows(ctx, c.session.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing chat windows: %w", err)
	}
	for i := range windows {
		if windows[i].ID == wanted {
			return &windows[i], nil
		}
	}

	if c.windowID != "" {
		return nil, fmt.Errorf("chat window not found: %s", c.windowID)
	}
	return c.openWindow(ctx)
}

// openWindow creates a chat window and remembers it in the session.
func (c *chatCommander) openWindow(ctx context.Context) (*dating.ChatWindow, error) {
	w, err := c.env.Client.CreateChatWindow(ctx, dating.NewChatWindow{
		UserID: c.session.UserID,
		Title:  c.title,
		Mode:   dating.Mode(c.mode),
	})
	if err != nil {
		return nil, fmt.Errorf("creating chat window: %w", err)
	}

	c.session.ChatWindowID = w.ID
	if err := c.env.Sessions.Save(c.session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return w, nil
}

func (c *chatCommander) printWindow(w *dating.ChatWindow) {
	fmt.Fprintf(c.out, "  %s %s %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(w.Title),
		cliui.DimStyle.Render("("+utils.Truncate(w.ID, 8)+")"),
	)
	fmt.Fprintf(c.out, "  %s %s\n\n",
		cliui.KeyStyle.Render("Mode:"),
		cliui.ValueStyle.Render(dating.Label(dating.Modes, dating.Mode(c.mode))),
	)
}

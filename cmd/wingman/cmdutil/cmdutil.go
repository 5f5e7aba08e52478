// Package cmdutil wires the configuration, session and API client shared by
// the wingman commands that talk to a running API server.
package cmdutil

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/wingman/pkg/client"
	"github.com/papercomputeco/wingman/pkg/config"
	"github.com/papercomputeco/wingman/pkg/logger"
	"github.com/papercomputeco/wingman/pkg/session"
	"github.com/papercomputeco/wingman/pkg/stream"
)

// ClientFlagKeys are the config.ClientFlags every client command registers.
var ClientFlagKeys = []string{config.FlagAPITarget, config.FlagRequireDone, config.FlagIdleTimeout}

// ClientFlags holds the flag targets of a client command.
type ClientFlags struct {
	APITarget   string
	RequireDone bool
	IdleTimeout string
}

// AddClientFlags registers the client flags on cmd.
func AddClientFlags(cmd *cobra.Command, f *ClientFlags) {
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagAPITarget, &f.APITarget)
	config.AddBoolFlag(cmd, config.ClientFlags, config.FlagRequireDone, &f.RequireDone)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagIdleTimeout, &f.IdleTimeout)
}

// Env is everything a client command needs.
type Env struct {
	Config   *config.Config
	Client   *client.Client
	Sessions *session.Manager
	Logger   *slog.Logger

	trace io.Closer
}

// Load resolves the effective configuration for cmd (flag > env > config
// file > default) and builds the API client from it.
func Load(cmd *cobra.Command) (*Env, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")
	tracePath, _ := cmd.Flags().GetString("trace-stream")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.ClientFlags, ClientFlagKeys)
	cfg := config.FromViper(v)

	log := logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(true),
		logger.WithWriter(cmd.ErrOrStderr()),
	)

	idle, err := cfg.Stream.IdleTimeoutDuration()
	if err != nil {
		return nil, err
	}

	streamOpts := []stream.Option{
		stream.WithRequireDone(cfg.Stream.RequireDone),
		stream.WithIdleTimeout(idle),
	}

	env := &Env{Config: cfg, Logger: log}

	if tracePath != "" {
		f, err := os.OpenFile(tracePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening stream trace: %w", err)
		}
		env.trace = f
		streamOpts = append(streamOpts, stream.WithTee(f))
	}

	env.Client = client.New(cfg.Client.APITarget,
		client.WithLogger(log),
		client.WithStreamOptions(streamOpts...),
	)

	env.Sessions, err = session.NewManager(configDir)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("loading session: %w", err)
	}

	log.Debug("client configured",
		"api_target", cfg.Client.APITarget,
		"require_done", cfg.Stream.RequireDone,
		"idle_timeout", idle,
	)

	return env, nil
}

// Session returns the logged-in user or session.ErrNotLoggedIn.
func (e *Env) Session() (*session.Session, error) {
	return e.Sessions.Load()
}

// Close releases the stream trace file, if any.
func (e *Env) Close() {
	if e.trace != nil {
		_ = e.trace.Close()
	}
}

// SignalContext returns a context cancelled by Ctrl-C or SIGTERM.
func SignalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// DescribeError turns client failures into the message shown to the user.
func DescribeError(err error) error {
	var serverErr *stream.ServerError
	switch {
	case errors.As(err, &serverErr):
		return fmt.Errorf("server error: %s", serverErr.Message)
	case errors.Is(err, stream.ErrEndedEarly):
		return errors.New("the answer was cut off before it finished")
	case errors.Is(err, stream.ErrIdleTimeout):
		return errors.New("the server stopped sending data")
	}
	return err
}

// Stdin returns the input of cmd as a file, falling back to os.Stdin.
func Stdin(cmd *cobra.Command) *os.File {
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		return f
	}
	return os.Stdin
}

// ReadSecret reads a password from stdin. If stdin is a pipe, it reads the
// first line. Otherwise, it prompts interactively with hidden input.
func ReadSecret(in *os.File, out io.Writer, prompt string) (string, error) {
	fi, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("checking stdin: %w", err)
	}

	if (fi.Mode() & os.ModeCharDevice) == 0 {
		scanner := bufio.NewScanner(in)
		if scanner.Scan() {
			return strings.TrimRight(scanner.Text(), "\r"), nil
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return "", errors.New("no input received on stdin")
	}

	fmt.Fprint(out, prompt)
	secret, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	return string(secret), nil
}

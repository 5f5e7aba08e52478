// Package servecmder provides the serve command running the wingman API server.
package servecmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/api"
	"github.com/papercomputeco/wingman/cmd/wingman/storagedriver"
	"github.com/papercomputeco/wingman/pkg/config"
	"github.com/papercomputeco/wingman/pkg/llm"
	"github.com/papercomputeco/wingman/pkg/llm/fake"
	"github.com/papercomputeco/wingman/pkg/llm/ollama"
	"github.com/papercomputeco/wingman/pkg/logger"
)

type serveCommander struct {
	listen       string
	provider     string
	upstream     string
	model        string
	llmTimeout   string
	sqlitePath   string
	postgresDSN  string
	allowOrigins string
	keepAlive    string
	logFile      string
	mcp          bool
	debug        bool

	logger *slog.Logger
}

// serveFlagKeys are the config.ServeFlags registered on the serve command.
var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagProvider,
	config.FlagUpstream,
	config.FlagModel,
	config.FlagLLMTimeout,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagOrigins,
	config.FlagKeepAlive,
	config.FlagMCP,
	config.FlagLogFile,
}

const serveLongDesc string = `Run the wingman API server.

The server answers the web frontend and the wingman CLI. Generated text comes
from an Ollama server (provider "ollama") or from canned answers (provider
"fake", no model required). Answers are streamed as server-sent events.

--log-file keeps a JSON copy of the server log next to the console output.

Storage defaults to memory. Pass --sqlite for a local database file or
--postgres for a PostgreSQL server; --postgres wins when both are set.

Examples:
  wingman serve
  wingman serve --model llama3.1:8b --sqlite ~/.wingman/wingman.db
  wingman serve --provider fake --mcp`

const serveShortDesc string = "Run the wingman API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.ServeFlags, serveFlagKeys)

			return cmder.run(cmd.Context(), config.FromViper(v))
		},
	}

	config.AddStringFlag(cmd, config.ServeFlags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagUpstream, &cmder.upstream)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagLLMTimeout, &cmder.llmTimeout)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagOrigins, &cmder.allowOrigins)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagKeepAlive, &cmder.keepAlive)
	config.AddBoolFlag(cmd, config.ServeFlags, config.FlagMCP, &cmder.mcp)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagLogFile, &cmder.logFile)

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var closeLog func() error
	var err error
	c.logger, closeLog, err = newLogger(os.Stderr, cfg.API.LogFile, c.debug)
	if err != nil {
		return err
	}
	defer closeLog()

	keepAlive, err := cfg.API.KeepAliveDuration()
	if err != nil {
		return err
	}

	gen, err := newGenerator(cfg.LLM)
	if err != nil {
		return err
	}
	defer gen.Close()

	driver, err := storagedriver.Open(ctx, cfg.Storage, c.logger)
	if err != nil {
		return err
	}
	defer driver.Close()

	server, err := api.NewServer(api.Config{
		ListenAddr:   cfg.API.Listen,
		Model:        cfg.LLM.Model,
		KeepAlive:    keepAlive,
		AllowOrigins: cfg.API.AllowOrigins,
		MCP:          cfg.API.MCP,
	}, driver, gen, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("starting wingman",
		"api_addr", cfg.API.Listen,
		"provider", gen.Name(),
		"model", cfg.LLM.Model,
		"mcp", cfg.API.MCP,
	)

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
		c.logger.Info("context done, shutting down")
	}

	return server.Shutdown()
}

// newLogger writes pretty logs to console. With a logFile every record is
// also appended to that file as JSON. The returned func closes the file.
func newLogger(console io.Writer, logFile string, debug bool) (*slog.Logger, func() error, error) {
	pretty := logger.New(
		logger.WithWriter(console),
		logger.WithDebug(debug),
		logger.WithPretty(true),
	)
	if logFile == "" {
		return pretty, func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	jsonLog := logger.New(
		logger.WithWriter(f),
		logger.WithDebug(debug),
		logger.WithJSON(true),
	)
	return logger.Multi(pretty, jsonLog), f.Close, nil
}

// newGenerator builds the text generation backend selected by cfg.
func newGenerator(cfg config.LLMConfig) (llm.Generator, error) {
	switch cfg.Provider {
	case config.ProviderOllama, "":
		timeout, err := cfg.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		return ollama.New(ollama.Config{
			BaseURL: cfg.Upstream,
			Model:   cfg.Model,
			Timeout: timeout,
		}), nil

	case config.ProviderFake:
		return fake.New(), nil

	default:
		return nil, fmt.Errorf("unknown llm provider: %q (available: %v)", cfg.Provider, config.ValidProviders())
	}
}

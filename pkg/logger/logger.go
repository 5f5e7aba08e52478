// Package logger builds the *slog.Logger instances used across wingman.
//
// Three handlers are available: slog's text handler (default), slog's JSON
// handler for the API server and charmbracelet/log for interactive CLI use.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	source  bool
	prefix  string
	writers []io.Writer
}

// New creates a *slog.Logger configured by opts.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(c)
	}

	var w io.Writer
	switch len(c.writers) {
	case 0:
		w = os.Stdout
	case 1:
		w = c.writers[0]
	default:
		w = io.MultiWriter(c.writers...)
	}

	var handler slog.Handler
	switch {
	case c.json:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     c.level,
			AddSource: c.source,
		})
	case c.pretty:
		h := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(c.level),
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			ReportCaller:    c.source,
			Prefix:          c.prefix,
		})
		handler = h
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     c.level,
			AddSource: c.source,
		})
	}

	l := slog.New(handler)
	if c.prefix != "" && !c.pretty {
		l = l.With("component", c.prefix)
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }

package logger

import (
	"context"
	"errors"
	"log/slog"
)

// fanout hands each record to several handlers. "wingman serve --log-file"
// uses it to pair the pretty console log with a JSON file log.
type fanout []slog.Handler

// Multi returns a logger that writes every record through each of loggers.
// Nil loggers are skipped. A record is passed to a handler only when that
// handler is enabled for its level, so each destination keeps its own level.
func Multi(loggers ...*slog.Logger) *slog.Logger {
	var hs fanout
	for _, l := range loggers {
		if l != nil {
			hs = append(hs, l.Handler())
		}
	}
	return slog.New(hs)
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle writes r to every enabled handler. A failing destination does not
// stop the others; their errors are joined.
func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}

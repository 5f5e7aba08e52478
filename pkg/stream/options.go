package stream

import (
	"io"
	"log/slog"
	"time"
)

// Option configures a Consumer created with New.
type Option func(*Consumer)

// WithLogger sets the logger used for skipped frames. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Consumer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRequireDone makes end-of-data without a done frame fail with
// ErrEndedEarly instead of returning normally.
func WithRequireDone(require bool) Option {
	return func(c *Consumer) {
		c.requireDone = require
	}
}

// WithIdleTimeout fails the call with ErrIdleTimeout when no bytes arrive for
// d. Zero disables the timeout, which is the default: a stalled stream waits
// until the caller cancels.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Consumer) {
		c.idleTimeout = d
	}
}

// WithTee copies every byte read from the body verbatim to w. The writer is
// shared by all calls made through the Consumer.
func WithTee(w io.Writer) Option {
	return func(c *Consumer) {
		c.tee = w
	}
}

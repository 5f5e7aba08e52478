package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/papercomputeco/wingman/pkg/sse"
	"github.com/papercomputeco/wingman/pkg/utils"
)

// Handlers are the caller-supplied callbacks. Either may be nil.
//
// OnChunk is called once per chunk frame with exactly the text it carries;
// accumulation is the caller's job. OnDone is called at most once, after the
// last chunk, and Consume waits for it to return. A non-nil error from either
// callback stops the stream and is returned from Consume as is.
type Handlers struct {
	OnChunk func(text string) error
	OnDone  func(ctx context.Context) error
}

// Ending reports how a successful Consume call stopped reading.
type Ending int

const (
	// EndedByEOF means the transport closed without a done frame.
	EndedByEOF Ending = iota

	// EndedByDone means a done frame was received.
	EndedByDone
)

func (e Ending) String() string {
	if e == EndedByDone {
		return "done"
	}
	return "eof"
}

// Result summarises a Consume call. It is returned alongside errors as well,
// reflecting what was delivered before the failure.
type Result struct {
	Ending Ending

	// Chunks is the number of OnChunk invocations.
	Chunks int

	// Malformed is the number of data frames skipped because their JSON body
	// could not be parsed.
	Malformed int
}

// Consumer turns a streamed response body into Handlers invocations.
// A Consumer holds configuration only and is safe for concurrent use; every
// Consume call owns its own buffers.
type Consumer struct {
	logger      *slog.Logger
	requireDone bool
	idleTimeout time.Duration
	tee         io.Writer
}

// New creates a Consumer.
func New(opts ...Option) *Consumer {
	c := &Consumer{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Consume reads body with a default Consumer.
func Consume(ctx context.Context, body io.Reader, h Handlers) (*Result, error) {
	return New().Consume(ctx, body, h)
}

type frameResult struct {
	frame *sse.Frame
	err   error
}

// Consume reads frames from body until a done frame, an error frame, the end
// of the body or cancellation of ctx, invoking h in stream order.
//
// body must come from an already-accepted (2xx) response. When body is an
// io.Closer it is closed as soon as ctx is cancelled so that a blocked read
// returns promptly; once ctx is cancelled no further callbacks are invoked and
// the context's cause is returned.
//
// Nothing is read from body after a done or error frame. A single frame
// larger than 1 MiB fails the call with a *ReadError wrapping
// bufio.ErrTooLong.
func (c *Consumer) Consume(ctx context.Context, body io.Reader, h Handlers) (*Result, error) {
	parent := ctx
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if closer, ok := body.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = closer.Close() })
		defer stop()
	}

	src := body
	if c.idleTimeout > 0 {
		timer := time.AfterFunc(c.idleTimeout, func() { cancel(ErrIdleTimeout) })
		defer timer.Stop()
		src = &idleReader{r: body, timer: timer, timeout: c.idleTimeout}
	}

	var reader *sse.Reader
	if c.tee != nil {
		reader = sse.NewTeeReader(src, c.tee)
	} else {
		reader = sse.NewReader(src)
	}

	// Frames are read on demand so that nothing past a terminal frame is
	// pulled from body.
	want := make(chan struct{})
	frames := make(chan frameResult)
	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		for {
			select {
			case <-want:
			case <-stopped:
				return
			}

			f, err := reader.Next()
			select {
			case frames <- frameResult{frame: f, err: err}:
			case <-stopped:
				return
			}
			if f == nil || err != nil {
				return
			}
		}
	}()

	res := &Result{}
	for {
		select {
		case <-ctx.Done():
			return res, context.Cause(ctx)
		case want <- struct{}{}:
		}

		var fr frameResult
		select {
		case <-ctx.Done():
			return res, context.Cause(ctx)
		case fr = <-frames:
		}

		if fr.err != nil {
			// A read interrupted by cancellation reports the cancellation.
			if ctx.Err() != nil {
				return res, context.Cause(ctx)
			}
			return res, &ReadError{Err: fr.err}
		}

		if fr.frame == nil {
			if c.requireDone {
				return res, ErrEndedEarly
			}
			res.Ending = EndedByEOF
			return res, nil
		}

		data, ok := fr.frame.Data()
		if !ok {
			continue
		}

		ev, err := DecodePayload([]byte(data))
		if err != nil {
			if errors.Is(err, errNoEvent) {
				c.logger.Debug("ignoring stream frame without protocol fields",
					"frame", utils.Truncate(data, 120),
				)
				continue
			}
			res.Malformed++
			c.logger.Warn("skipping malformed stream frame",
				"error", err,
				"frame", utils.Truncate(data, 120),
			)
			continue
		}

		if ctx.Err() != nil {
			return res, context.Cause(ctx)
		}

		switch ev.Kind {
		case KindError:
			return res, &ServerError{Message: ev.Text}

		case KindChunk:
			res.Chunks++
			if h.OnChunk != nil {
				if err := h.OnChunk(ev.Text); err != nil {
					return res, err
				}
			}

		case KindDone:
			res.Ending = EndedByDone
			if h.OnDone != nil {
				if err := h.OnDone(parent); err != nil {
					return res, err
				}
			}
			return res, nil
		}
	}
}

// idleReader pushes the idle deadline forward whenever bytes arrive.
type idleReader struct {
	r       io.Reader
	timer   *time.Timer
	timeout time.Duration
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n > 0 {
		ir.timer.Reset(ir.timeout)
	}
	return n, err
}

package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/wingman/api/worker"
	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/llm"
	"github.com/papercomputeco/wingman/pkg/stream"
)

// handleGenerate answers a chat prompt, as one JSON body or, when the
// request asks for it, as a stream of chunk events ending in done or error.
func (s *Server) handleGenerate(c *fiber.Ctx) error {
	var req dating.GenerateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if req.UserID != 0 {
		if _, err := s.storer.GetUser(c.UserContext(), req.UserID); err != nil {
			return err
		}
	}

	record := func(text string) {
		s.pool.Enqueue(worker.Job{Response: &dating.Response{
			UserID:       req.UserID,
			ChatWindowID: req.ChatWindowID,
			Prompt:       req.Prompt,
			Response:     text,
		}})
	}

	llmReq := s.llmRequest(dating.ChatPrompt(req.Mode, req.Prompt))
	if req.Stream {
		return s.stream(c, llmReq, record)
	}

	resp, err := s.gen.Generate(c.UserContext(), llmReq, nil)
	if err != nil {
		return err
	}
	record(resp.Text)
	return c.JSON(dating.GenerateResponse{Response: resp.Text})
}

// handleReplies streams reply options to a match's message. The client
// splits the finished text with dating.ParseReplies.
func (s *Server) handleReplies(c *fiber.Ctx) error {
	var req dating.ReplyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := s.storer.GetUser(c.UserContext(), req.UserID); err != nil {
		return err
	}

	p := dating.ReplyPrompt(req.Message, req.Intention, req.Style)
	return s.stream(c, s.llmRequest(p), func(text string) {
		s.pool.Enqueue(worker.Job{Response: &dating.Response{
			UserID:   req.UserID,
			Prompt:   req.Message,
			Response: text,
		}})
	})
}

// stream answers c with an SSE body fed by a generation running in its own
// goroutine. onDone receives the full text of a generation that finished.
func (s *Server) stream(c *fiber.Ctx, req *llm.GenerateRequest, onDone func(text string)) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	logger := s.logger.With("request_id", requestID(c))

	// fasthttp recycles the request context once the handler returns, so the
	// generation gets its own context and learns about a departed client from
	// failed pipe writes. io.Pipe makes every event reach the socket before
	// the next token is read.
	pr, pw := io.Pipe()
	go s.pump(pw, req, onDone, logger)

	// Unknown size (-1) selects chunked transfer encoding.
	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

func (s *Server) pump(pw *io.PipeWriter, req *llm.GenerateRequest, onDone func(string), logger *slog.Logger) {
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	em := stream.NewEmitter(pw)
	if s.config.KeepAlive > 0 {
		stop := keepAlive(ctx, cancel, em, s.config.KeepAlive)
		defer stop()
	}

	start := time.Now()
	tokens := 0
	resp, err := s.gen.Generate(ctx, req, func(token string) error {
		tokens++
		return em.Chunk(token)
	})

	switch {
	case errors.Is(err, io.ErrClosedPipe) || errors.Is(err, context.Canceled):
		logger.Info("client went away mid stream", "tokens", tokens)
		return
	case err != nil:
		logger.Error("generation failed", "error", err, "tokens", tokens)
		if werr := em.Error(streamErrorMessage(err)); werr != nil {
			logger.Debug("could not deliver error event", "error", werr)
		}
		return
	}

	if err := em.Done(); err != nil {
		logger.Info("client went away before done", "error", err)
		return
	}

	logger.Debug("stream finished",
		"tokens", tokens,
		"duration", time.Since(start),
	)
	if onDone != nil {
		onDone(resp.Text)
	}
}

// keepAlive writes a comment frame every interval until ctx ends. A failed
// write means the client is gone and cancels the generation. The returned
// func stops the loop and waits for it.
func keepAlive(ctx context.Context, cancel context.CancelFunc, em *stream.Emitter, interval time.Duration) func() {
	stopped := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stopped:
				return
			case <-ticker.C:
				if err := em.KeepAlive(); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	return func() {
		close(stopped)
		wg.Wait()
	}
}

package stream_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"runtime"
	"slices"
	"strings"
	"sync"
	"testing/iotest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wingman/pkg/logger"
	"github.com/papercomputeco/wingman/pkg/stream"
)

// piecesReader returns one piece per Read call, simulating network reads that
// end at arbitrary byte offsets.
type piecesReader struct {
	pieces [][]byte
}

func newPiecesReader(input string, cuts ...int) *piecesReader {
	r := &piecesReader{}
	prev := 0
	for _, cut := range cuts {
		r.pieces = append(r.pieces, []byte(input[prev:cut]))
		prev = cut
	}
	r.pieces = append(r.pieces, []byte(input[prev:]))
	return r
}

func (r *piecesReader) Read(p []byte) (int, error) {
	for len(r.pieces) > 0 && len(r.pieces[0]) == 0 {
		r.pieces = r.pieces[1:]
	}
	if len(r.pieces) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.pieces[0])
	r.pieces[0] = r.pieces[0][n:]
	return n, nil
}

// recorder captures callback invocations in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) handlers() stream.Handlers {
	return stream.Handlers{
		OnChunk: func(text string) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.calls = append(r.calls, "chunk:"+text)
			return nil
		},
		OnDone: func(context.Context) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.calls = append(r.calls, "done")
			return nil
		},
	}
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func consume(body io.Reader, opts ...stream.Option) ([]string, *stream.Result, error) {
	rec := &recorder{}
	opts = append([]stream.Option{stream.WithLogger(logger.Nop())}, opts...)
	res, err := stream.New(opts...).Consume(context.Background(), body, rec.handlers())
	return rec.Calls(), res, err
}

var _ = Describe("Consumer", func() {
	Describe("concrete scenarios", func() {
		It("delivers chunks then done in order", func() {
			input := "data: {\"chunk\":\"Hel\"}\n\ndata: {\"chunk\":\"lo\"}\n\ndata: {\"done\":true}\n\n"

			calls, res, err := consume(strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]string{"chunk:Hel", "chunk:lo", "done"}))
			Expect(res.Ending).To(Equal(stream.EndedByDone))
			Expect(res.Chunks).To(Equal(2))
		})

		It("reassembles a payload split across two reads", func() {
			input := "data: {\"ch" + "unk\":\"Hi\"}\n\ndata: {\"done\":true}\n\n"

			calls, _, err := consume(newPiecesReader(input, len("data: {\"ch")))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]string{"chunk:Hi", "done"}))
		})

		It("skips a malformed frame and keeps going", func() {
			input := "data: not-json\n\ndata: {\"chunk\":\"ok\"}\n\ndata: {\"done\":true}\n\n"

			calls, res, err := consume(strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]string{"chunk:ok", "done"}))
			Expect(res.Malformed).To(Equal(1))
		})

		It("fails with the server reported message", func() {
			input := "data: {\"error\":\"rate limited\"}\n\n"

			calls, _, err := consume(strings.NewReader(input))
			Expect(err).To(MatchError("rate limited"))

			var serverErr *stream.ServerError
			Expect(errors.As(err, &serverErr)).To(BeTrue())
			Expect(serverErr.Message).To(Equal("rate limited"))
			Expect(calls).To(BeEmpty())
		})

		It("returns normally when the stream ends without done", func() {
			input := "data: {\"chunk\":\"partial\"}\n\n"

			calls, res, err := consume(strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]string{"chunk:partial"}))
			Expect(res.Ending).To(Equal(stream.EndedByEOF))
		})
	})

	Describe("chunking invariance", func() {
		input := "data: {\"chunk\":\"Zażółć \"}\n\n" +
			": keep-alive\n\n" +
			"data: {\"chunk\":\"gęślą jaźń ❤️\"}\n\n" +
			"data: {\"chunk\":\"\"}\n\n" +
			"data: {\"done\":true}\n\n"

		var expected []string

		BeforeEach(func() {
			var err error
			expected, _, err = consume(strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(expected).To(HaveLen(4))
		})

		It("is unaffected by a split at every byte offset", func() {
			for cut := 1; cut < len(input); cut++ {
				calls, _, err := consume(newPiecesReader(input, cut))
				Expect(err).NotTo(HaveOccurred(), "cut at %d", cut)
				Expect(calls).To(Equal(expected), "cut at %d", cut)
			}
		})

		It("is unaffected by one-byte reads", func() {
			calls, _, err := consume(iotest.OneByteReader(strings.NewReader(input)))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(expected))
		})

		It("is unaffected by random multi-way splits", func() {
			rng := rand.New(rand.NewSource(42))
			for range 200 {
				n := rng.Intn(8) + 1
				cuts := make([]int, 0, n)
				for range n {
					cuts = append(cuts, rng.Intn(len(input)))
				}
				slices.Sort(cuts)

				calls, _, err := consume(newPiecesReader(input, cuts...))
				Expect(err).NotTo(HaveOccurred(), "cuts %v", cuts)
				Expect(calls).To(Equal(expected), "cuts %v", cuts)
			}
		})
	})

	Describe("malformed frames", func() {
		It("delivers every valid frame around a malformed one", func() {
			frames := []string{
				`{"chunk":"a"}`,
				`{"chunk":"b"}`,
				`{"chunk":`,
				`{"chunk":"c"}`,
				`{"done":true}`,
			}
			calls, res, err := consume(strings.NewReader(wire(frames...)))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]string{"chunk:a", "chunk:b", "chunk:c", "done"}))
			Expect(res.Malformed).To(Equal(1))
		})

		It("treats a non-string chunk as malformed", func() {
			calls, res, err := consume(strings.NewReader(wire(`{"chunk":42}`, `{"done":true}`)))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]string{"done"}))
			Expect(res.Malformed).To(Equal(1))
		})

		It("ignores well-formed payloads with no protocol fields", func() {
			calls, res, err := consume(strings.NewReader(wire(`{"ping":1}`, `{"chunk":"x"}`)))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]string{"chunk:x"}))
			Expect(res.Malformed).To(BeZero())
		})

		It("logs skipped frames", func() {
			buf := &bytes.Buffer{}
			l := logger.New(logger.WithWriter(buf), logger.WithJSON(true))

			_, _, err := consume(strings.NewReader(wire("nope")), stream.WithLogger(l))
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("skipping malformed stream frame"))
		})
	})

	Describe("non-data frames", func() {
		It("silently skips comments, event names, ids and blank frames", func() {
			input := ": comment\n\n" +
				"event: message\ndata: {\"chunk\":\"hidden\"}\n\n" +
				"id: 7\n\n" +
				"\n\n" +
				"data:{\"chunk\":\"no-space\"}\n\n" +
				"data: {\"chunk\":\"shown\"}\n\n"

			calls, res, err := consume(strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]string{"chunk:shown"}))
			Expect(res.Malformed).To(BeZero())
		})
	})

	Describe("error frames", func() {
		It("invokes nothing at or after the error position", func() {
			for k := range 4 {
				frames := []string{`{"chunk":"0"}`, `{"chunk":"1"}`, `{"chunk":"2"}`, `{"chunk":"3"}`}
				frames[k] = `{"error":"boom"}`
				frames = append(frames, `{"done":true}`)

				calls, _, err := consume(strings.NewReader(wire(frames...)))
				Expect(err).To(MatchError("boom"))
				Expect(calls).To(HaveLen(k))
				Expect(calls).NotTo(ContainElement("done"))
			}
		})

		It("prefers error over chunk in the same payload", func() {
			calls, _, err := consume(strings.NewReader(wire(`{"chunk":"x","error":"bad"}`)))
			Expect(err).To(MatchError("bad"))
			Expect(calls).To(BeEmpty())
		})

		It("keeps non-string error values in raw form", func() {
			_, _, err := consume(strings.NewReader(wire(`{"error":{"code":429}}`)))
			Expect(err).To(MatchError(`{"code":429}`))
		})

		It("stops reading after the error frame", func() {
			pr, pw := io.Pipe()
			go func() {
				_, _ = pw.Write([]byte(wire(`{"error":"stop"}`)))
				// Never closed: the consumer must not wait for more data.
			}()

			_, _, err := consume(pr)
			Expect(err).To(MatchError("stop"))
			_ = pw.Close()
		})
	})

	Describe("done frames", func() {
		It("ignores frames after done", func() {
			calls, _, err := consume(strings.NewReader(wire(`{"done":true}`, `{"chunk":"late"}`, `{"error":"late"}`)))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]string{"done"}))
		})

		It("does not treat a falsy done as completion", func() {
			calls, res, err := consume(strings.NewReader(wire(`{"done":false}`, `{"done":0}`, `{"chunk":"more"}`)))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]string{"chunk:more"}))
			Expect(res.Ending).To(Equal(stream.EndedByEOF))
		})

		It("waits for OnDone before returning", func() {
			finished := false
			h := stream.Handlers{
				OnDone: func(context.Context) error {
					time.Sleep(20 * time.Millisecond)
					finished = true
					return nil
				},
			}

			_, err := stream.Consume(context.Background(), strings.NewReader(wire(`{"done":true}`)), h)
			Expect(err).NotTo(HaveOccurred())
			Expect(finished).To(BeTrue())
		})

		It("propagates an OnDone error", func() {
			boom := errors.New("refresh failed")
			h := stream.Handlers{OnDone: func(context.Context) error { return boom }}

			res, err := stream.Consume(context.Background(), strings.NewReader(wire(`{"done":true}`)), h)
			Expect(err).To(MatchError(boom))
			Expect(res.Ending).To(Equal(stream.EndedByDone))
		})

		It("stops on an OnChunk error", func() {
			boom := errors.New("ui gone")
			var seen []string
			h := stream.Handlers{
				OnChunk: func(text string) error {
					seen = append(seen, text)
					return boom
				},
			}

			_, err := stream.Consume(context.Background(), strings.NewReader(wire(`{"chunk":"a"}`, `{"chunk":"b"}`)), h)
			Expect(err).To(MatchError(boom))
			Expect(seen).To(Equal([]string{"a"}))
		})

		It("tolerates nil handlers", func() {
			res, err := stream.Consume(context.Background(), strings.NewReader(wire(`{"chunk":"a"}`, `{"done":true}`)), stream.Handlers{})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Chunks).To(Equal(1))
		})
	})

	Describe("truncation", func() {
		It("fails with ErrEndedEarly when done is required", func() {
			calls, _, err := consume(strings.NewReader(wire(`{"chunk":"partial"}`)), stream.WithRequireDone(true))
			Expect(err).To(MatchError(stream.ErrEndedEarly))
			Expect(calls).To(Equal([]string{"chunk:partial"}))
		})

		It("succeeds when done is required and present", func() {
			_, res, err := consume(strings.NewReader(wire(`{"done":true}`)), stream.WithRequireDone(true))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ending).To(Equal(stream.EndedByDone))
		})

		It("ignores a trailing undelimited fragment", func() {
			calls, _, err := consume(strings.NewReader(wire(`{"chunk":"a"}`) + `data: {"chunk":"b"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]string{"chunk:a"}))
		})
	})

	Describe("network failures", func() {
		It("wraps read errors", func() {
			boom := errors.New("connection reset by peer")
			body := io.MultiReader(strings.NewReader(wire(`{"chunk":"a"}`)), iotest.ErrReader(boom))

			calls, _, err := consume(body)
			Expect(err).To(MatchError(boom))

			var readErr *stream.ReadError
			Expect(errors.As(err, &readErr)).To(BeTrue())
			Expect(calls).To(Equal([]string{"chunk:a"}))
		})
	})

	Describe("cancellation", func() {
		It("interrupts a blocked read and never calls OnDone", func() {
			pr, pw := io.Pipe()
			rec := &recorder{}
			ctx, cancel := context.WithCancel(context.Background())

			errCh := make(chan error, 1)
			go func() {
				_, err := stream.New(stream.WithLogger(logger.Nop())).Consume(ctx, pr, rec.handlers())
				errCh <- err
			}()

			_, err := pw.Write([]byte(wire(`{"chunk":"first"}`)))
			Expect(err).NotTo(HaveOccurred())
			Eventually(rec.Calls).Should(Equal([]string{"chunk:first"}))

			cancel()
			Eventually(errCh).Should(Receive(MatchError(context.Canceled)))

			_, _ = pw.Write([]byte(wire(`{"done":true}`)))
			Consistently(rec.Calls, 50*time.Millisecond).Should(Equal([]string{"chunk:first"}))
		})

		It("returns promptly for bodies that cannot be closed", func() {
			pr, pw := io.Pipe()
			defer pw.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
			defer cancel()

			// io.MultiReader hides the Close method of the pipe.
			_, err := stream.New(stream.WithLogger(logger.Nop())).Consume(ctx, io.MultiReader(pr), stream.Handlers{})
			Expect(err).To(MatchError(context.DeadlineExceeded))
		})

		It("does not invoke callbacks when already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			rec := &recorder{}

			_, err := stream.New(stream.WithLogger(logger.Nop())).Consume(ctx, strings.NewReader(wire(`{"chunk":"a"}`, `{"done":true}`)), rec.handlers())
			Expect(err).To(MatchError(context.Canceled))
			Expect(rec.Calls()).To(BeEmpty())
		})
	})

	Describe("idle timeout", func() {
		It("fails a stalled stream with ErrIdleTimeout", func() {
			pr, pw := io.Pipe()
			defer pw.Close()

			go func() {
				_, _ = pw.Write([]byte(wire(`{"chunk":"a"}`)))
			}()

			calls, _, err := consume(pr, stream.WithIdleTimeout(50*time.Millisecond))
			Expect(err).To(MatchError(stream.ErrIdleTimeout))
			Expect(calls).To(Equal([]string{"chunk:a"}))
		})

		It("keeps a slow but live stream open", func() {
			pr, pw := io.Pipe()
			go func() {
				for i := range 5 {
					time.Sleep(20 * time.Millisecond)
					_, _ = pw.Write([]byte(wire(fmt.Sprintf(`{"chunk":"%d"}`, i))))
				}
				_, _ = pw.Write([]byte(wire(`{"done":true}`)))
				_ = pw.Close()
			}()

			calls, _, err := consume(pr, stream.WithIdleTimeout(200*time.Millisecond))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(HaveLen(6))
		})
	})

	Describe("tee", func() {
		It("copies the raw bytes to the tee writer", func() {
			input := wire(`{"chunk":"a"}`, `{"done":true}`)
			buf := &bytes.Buffer{}

			_, _, err := consume(strings.NewReader(input), stream.WithTee(buf))
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(Equal(input))
		})
	})

	Describe("terminal frames", func() {
		// writeAfter writes first, then second, to a pipe and reports on the
		// returned channel once second has been taken by the reader.
		writeAfter := func(pw *io.PipeWriter, first, second string) <-chan struct{} {
			secondRead := make(chan struct{})
			go func() {
				if _, err := pw.Write([]byte(first)); err != nil {
					return
				}
				if _, err := pw.Write([]byte(second)); err == nil {
					close(secondRead)
				}
			}()
			return secondRead
		}

		DescribeTable("reads nothing past the frame",
			func(terminal string, wantErr bool) {
				pr, pw := io.Pipe()
				DeferCleanup(pr.Close)

				tee := &bytes.Buffer{}
				secondRead := writeAfter(pw, wire(terminal), wire(`{"chunk":"late"}`))

				calls, _, err := consume(pr, stream.WithTee(tee))
				if wantErr {
					Expect(err).To(MatchError("stop"))
				} else {
					Expect(err).NotTo(HaveOccurred())
				}
				Expect(calls).NotTo(ContainElement("chunk:late"))

				Consistently(secondRead, 100*time.Millisecond).ShouldNot(BeClosed())
				Expect(tee.String()).To(Equal(wire(terminal)))
			},
			Entry("error", `{"error":"stop"}`, true),
			Entry("done", `{"done":true}`, false),
		)

		It("leaves no reader running on bodies that stay open", func() {
			baseline := runtime.NumGoroutine()

			var writers []*io.PipeWriter
			for range 20 {
				pr, pw := io.Pipe()
				writers = append(writers, pw)
				go func() { _, _ = pw.Write([]byte(wire(`{"done":true}`))) }()

				_, res, err := consume(pr)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Ending).To(Equal(stream.EndedByDone))
			}
			DeferCleanup(func() {
				for _, pw := range writers {
					_ = pw.Close()
				}
			})

			Eventually(runtime.NumGoroutine).Should(BeNumerically("<=", baseline+2))
		})
	})

	Describe("frame size", func() {
		It("fails the stream on a frame over 1 MiB", func() {
			huge := `{"chunk":"` + strings.Repeat("x", 1024*1024) + `"}`
			calls, _, err := consume(strings.NewReader(wire(`{"chunk":"a"}`, huge, `{"done":true}`)))

			var readErr *stream.ReadError
			Expect(errors.As(err, &readErr)).To(BeTrue())
			Expect(err).To(MatchError(bufio.ErrTooLong))
			Expect(calls).To(Equal([]string{"chunk:a"}))
		})
	})

	Describe("concurrent invocations", func() {
		It("keeps each invocation's events separate and ordered", func() {
			c := stream.New(stream.WithLogger(logger.Nop()))
			var wg sync.WaitGroup
			results := make([][]string, 8)

			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()

					var frames []string
					for j := range 20 {
						frames = append(frames, fmt.Sprintf(`{"chunk":"%d-%d"}`, i, j))
					}
					frames = append(frames, `{"done":true}`)

					rec := &recorder{}
					_, err := c.Consume(context.Background(), iotest.OneByteReader(strings.NewReader(wire(frames...))), rec.handlers())
					Expect(err).NotTo(HaveOccurred())
					results[i] = rec.Calls()
				}(i)
			}
			wg.Wait()

			for i, calls := range results {
				Expect(calls).To(HaveLen(21))
				for j := range 20 {
					Expect(calls[j]).To(Equal(fmt.Sprintf("chunk:%d-%d", i, j)))
				}
				Expect(calls[20]).To(Equal("done"))
			}
		})
	})
})

// wire renders JSON payloads as data frames.
func wire(payloads ...string) string {
	var b strings.Builder
	for _, p := range payloads {
		b.WriteString("data: " + p + "\n\n")
	}
	return b.String()
}

package sse

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// readAll drains r and returns the raw text of every frame.
func readAll(r *Reader) []string {
	var frames []string
	for {
		f, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		if f == nil {
			return frames
		}
		frames = append(frames, f.Raw)
	}
}

var _ = Describe("Reader", func() {
	Describe("Next", func() {
		Context("with data frames", func() {
			It("parses a single frame", func() {
				r := NewReader(strings.NewReader("data: hello world\n\n"))

				f, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(f.Raw).To(Equal("data: hello world"))

				data, ok := f.Data()
				Expect(ok).To(BeTrue())
				Expect(data).To(Equal("hello world"))

				f, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(f).To(BeNil())
			})

			It("parses multiple frames in order", func() {
				r := NewReader(strings.NewReader("data: first\n\ndata: second\n\n"))
				Expect(readAll(r)).To(Equal([]string{"data: first", "data: second"}))
			})

			It("keeps JSON payloads intact", func() {
				r := NewReader(strings.NewReader(`data: {"chunk":"Hel"}` + "\n\n" + `data: {"done":true}` + "\n\n"))
				Expect(readAll(r)).To(Equal([]string{`data: {"chunk":"Hel"}`, `data: {"done":true}`}))
			})
		})

		Context("with partial reads", func() {
			It("reassembles frames split one byte at a time", func() {
				input := "data: {\"chunk\":\"Hi\"}\n\ndata: {\"done\":true}\n\n"
				r := NewReader(iotest.OneByteReader(strings.NewReader(input)))
				Expect(readAll(r)).To(Equal([]string{`data: {"chunk":"Hi"}`, `data: {"done":true}`}))
			})

			It("reassembles multi-byte characters split across reads", func() {
				input := "data: {\"chunk\":\"cześć ❤️\"}\n\n"
				r := NewReader(iotest.OneByteReader(strings.NewReader(input)))

				f, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				data, ok := f.Data()
				Expect(ok).To(BeTrue())
				Expect(data).To(Equal(`{"chunk":"cześć ❤️"}`))
			})
		})

		Context("with non-data frames", func() {
			It("returns comment frames without a payload", func() {
				r := NewReader(strings.NewReader(": keep-alive\n\ndata: hello\n\n"))

				f, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				_, ok := f.Data()
				Expect(ok).To(BeFalse())

				f, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				data, ok := f.Data()
				Expect(ok).To(BeTrue())
				Expect(data).To(Equal("hello"))
			})

			It("does not treat data without the trailing space as a payload", func() {
				f := Frame{Raw: "data:no-space"}
				_, ok := f.Data()
				Expect(ok).To(BeFalse())
			})

			It("does not treat event-prefixed frames as a payload", func() {
				f := Frame{Raw: "event: message\ndata: hello"}
				_, ok := f.Data()
				Expect(ok).To(BeFalse())
			})

			It("yields empty frames for extra blank lines", func() {
				r := NewReader(strings.NewReader("\n\ndata: hello\n\n"))
				Expect(readAll(r)).To(Equal([]string{"", "data: hello"}))
			})
		})

		Context("edge cases", func() {
			It("returns nil on empty input", func() {
				r := NewReader(strings.NewReader(""))

				f, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(f).To(BeNil())
			})

			It("discards an undelimited trailing fragment", func() {
				r := NewReader(strings.NewReader("data: one\n\ndata: unterminated"))
				Expect(readAll(r)).To(Equal([]string{"data: one"}))
			})

			It("surfaces read errors", func() {
				boom := errors.New("connection reset")
				src := io.MultiReader(strings.NewReader("data: one\n\n"), iotest.ErrReader(boom))
				r := NewReader(src)

				f, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(f.Raw).To(Equal("data: one"))

				_, err = r.Next()
				Expect(err).To(MatchError(boom))
			})

			It("fails on frames larger than the maximum frame size", func() {
				big := "data: " + strings.Repeat("x", maxFrameSize+1) + "\n\n"
				r := NewReader(strings.NewReader(big))

				_, err := r.Next()
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("NewTeeReader", func() {
		It("forwards all bytes including delimiters to dst", func() {
			input := ": comment\n\ndata: first\n\ndata: second\n\n"
			dst := &bytes.Buffer{}
			r := NewTeeReader(strings.NewReader(input), dst)

			readAll(r)
			Expect(dst.String()).To(Equal(input))
		})

		It("forwards a trailing fragment that never forms a frame", func() {
			input := "data: one\n\ndata: tail"
			dst := &bytes.Buffer{}
			r := NewTeeReader(strings.NewReader(input), dst)

			readAll(r)
			Expect(dst.String()).To(Equal(input))
		})
	})
})

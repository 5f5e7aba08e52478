package sse

import (
	"bufio"
	"bytes"
	"io"
)

const (
	initialBufferSize = 64 * 1024
	maxFrameSize      = 1024 * 1024
)

// Reader reads SSE frames from a source io.Reader.
//
// Frames are split on raw bytes, so a delimiter, a JSON payload or a
// multi-byte UTF-8 character split across two network reads is reassembled
// before the frame is returned. The text of a frame is only materialised once
// the whole frame has arrived.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌───────────────────────────┐
// │  Reader.Next()   │──▶│ optional tee io.Writer    │
// └──────────────────┘   └───────────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │      Frame       │
// └──────────────────┘
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader returns a Reader that parses SSE frames from src.
func NewReader(src io.Reader) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, initialBufferSize), maxFrameSize)
	scanner.Split(splitFrames)

	return &Reader{scanner: scanner}
}

// NewTeeReader returns a Reader that parses SSE frames from src while writing
// every byte read from src verbatim to dest. Bytes are forwarded as they are
// read, including any trailing fragment that never forms a complete frame.
func NewTeeReader(src io.Reader, dest io.Writer) *Reader {
	return NewReader(io.TeeReader(src, dest))
}

// Next returns the next frame. It blocks until a complete frame is available
// (terminated by a blank line in the stream).
// Next returns nil, nil when the source is exhausted. An undelimited fragment
// left over at the end of the source is discarded.
func (r *Reader) Next() (*Frame, error) {
	if r.scanner.Scan() {
		return &Frame{Raw: r.scanner.Text()}, nil
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	return nil, nil
}

// splitFrames is a bufio.SplitFunc yielding the bytes before each "\n\n".
// At end of input without a delimiter it requests no further tokens, which
// drops the fragment.
func splitFrames(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.Index(data, []byte(Delimiter)); i >= 0 {
		return i + len(Delimiter), data[:i], nil
	}

	if atEOF {
		return len(data), nil, nil
	}

	// Request more data.
	return 0, nil, nil
}

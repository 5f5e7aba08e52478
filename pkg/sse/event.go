// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// frame reader and writer for the wingman streaming endpoints.
//
// The wire convention is deliberately narrower than the full SSE
// specification: a frame is everything up to a blank line ("\n\n") and only
// frames that begin with the literal "data: " prefix carry a payload. Frames
// carrying event names, ids, retry hints or comments are valid on the wire but
// have no payload.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

const (
	// Delimiter separates frames in the byte stream.
	Delimiter = "\n\n"

	// DataPrefix marks a frame whose remainder is a payload.
	DataPrefix = "data: "
)

// Frame is a single raw SSE frame, delimited by a blank line in the
// upstream byte stream. The delimiter itself is not included.
type Frame struct {
	// Raw is the exact frame text as it appeared on the wire.
	Raw string
}

// Data returns the payload carried by the frame and true when the frame starts
// with the "data: " prefix. Any other frame (comments, event names, ids,
// keep-alive blanks) yields "", false.
func (f Frame) Data() (string, bool) {
	if !strings.HasPrefix(f.Raw, DataPrefix) {
		return "", false
	}
	return f.Raw[len(DataPrefix):], true
}

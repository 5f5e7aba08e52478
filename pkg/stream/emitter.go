package stream

import (
	"io"

	"github.com/papercomputeco/wingman/pkg/sse"
)

// Emitter is the producing side of the protocol: it writes events as SSE data
// frames in the exact format Consume reads.
type Emitter struct {
	w *sse.Writer
}

// NewEmitter returns an Emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: sse.NewWriter(w)}
}

// Emit writes a single event.
func (e *Emitter) Emit(ev Event) error {
	data, err := EncodePayload(ev)
	if err != nil {
		return err
	}
	return e.w.WriteData(data)
}

// Chunk writes a chunk event.
func (e *Emitter) Chunk(text string) error { return e.Emit(Chunk(text)) }

// Done writes the terminating done event.
func (e *Emitter) Done() error { return e.Emit(Done()) }

// Error writes a terminating error event.
func (e *Emitter) Error(message string) error { return e.Emit(Failure(message)) }

// KeepAlive writes a comment frame that consumers ignore.
func (e *Emitter) KeepAlive() error { return e.w.WriteComment("keep-alive") }

// Package stream consumes the wingman streaming protocol: an HTTP response
// body of SSE data frames whose JSON payloads are one of
//
//	{"chunk": "<partial text>"}
//	{"done": true}
//	{"error": "<message>"}
//
// and turns it into ordered chunk and done callbacks, or a failure.
package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind discriminates the payload variants of an Event.
type Kind int

const (
	// KindChunk is an incremental piece of generated text.
	KindChunk Kind = iota

	// KindDone signals that no further events follow.
	KindDone

	// KindError signals that the producing backend failed.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindChunk:
		return "chunk"
	case KindDone:
		return "done"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is one decoded frame payload.
type Event struct {
	Kind Kind

	// Text is the chunk text for KindChunk and the message for KindError.
	Text string
}

// Chunk returns a chunk event carrying text.
func Chunk(text string) Event { return Event{Kind: KindChunk, Text: text} }

// Done returns a done event.
func Done() Event { return Event{Kind: KindDone} }

// Failure returns an error event carrying message.
func Failure(message string) Event { return Event{Kind: KindError, Text: message} }

// errNoEvent is returned by DecodePayload for well-formed JSON objects that
// carry none of the protocol fields.
var errNoEvent = errors.New("payload carries no chunk, done or error field")

// payload mirrors the wire JSON. Fields are kept raw so that presence can be
// told apart from zero values.
type payload struct {
	Chunk *string         `json:"chunk"`
	Done  json.RawMessage `json:"done"`
	Error json.RawMessage `json:"error"`
}

// DecodePayload decodes the JSON body of a data frame. Field precedence is
// error, then chunk, then done. A done field only counts when it is truthy.
func DecodePayload(data []byte) (Event, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Event{}, err
	}

	if len(p.Error) > 0 && !isNull(p.Error) {
		return Failure(errorMessage(p.Error)), nil
	}

	if p.Chunk != nil {
		return Chunk(*p.Chunk), nil
	}

	if isTruthy(p.Done) {
		return Done(), nil
	}

	return Event{}, errNoEvent
}

// EncodePayload encodes ev as the JSON body of a data frame.
func EncodePayload(ev Event) ([]byte, error) {
	switch ev.Kind {
	case KindChunk:
		return json.Marshal(struct {
			Chunk string `json:"chunk"`
		}{ev.Text})
	case KindDone:
		return json.Marshal(struct {
			Done bool `json:"done"`
		}{true})
	case KindError:
		return json.Marshal(struct {
			Error string `json:"error"`
		}{ev.Text})
	default:
		return nil, fmt.Errorf("unknown event kind %v", ev.Kind)
	}
}

// errorMessage renders the error field. String values are used as is; any
// other JSON value is kept in its raw form so the caller still sees it.
func errorMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// isTruthy follows JSON truthiness: absent, null, false, 0 and "" are false.
func isTruthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}

	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

package stream

import (
	"errors"
)

var (
	// ErrEndedEarly is returned when the transport reached end-of-data before a
	// done frame arrived and the Consumer was built WithRequireDone(true).
	ErrEndedEarly = errors.New("stream ended before a done frame")

	// ErrIdleTimeout is returned when no bytes arrived within the configured
	// idle timeout.
	ErrIdleTimeout = errors.New("stream idle timeout")
)

// ServerError is a failure reported by the producing backend through an
// error frame. Its Error() is exactly the carried message.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// ReadError wraps a failure of the underlying transport, such as a dropped
// connection.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return "reading stream: " + e.Err.Error()
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

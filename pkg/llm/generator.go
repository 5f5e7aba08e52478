// Package llm defines the text generation backends the wingman API server
// streams answers from.
package llm

import (
	"context"
	"errors"
)

// TokenFunc receives generated text in order as it is produced. Returning an
// error aborts the generation and Generate returns that error.
type TokenFunc func(token string) error

// Generator produces text for a prompt, streaming it token by token.
// Implementations are safe for concurrent use.
type Generator interface {
	// Name returns the backend name (e.g. "ollama").
	Name() string

	// Generate runs req, calling onToken for every piece of text. onToken may
	// be nil when only the final response is wanted.
	Generate(ctx context.Context, req *GenerateRequest, onToken TokenFunc) (*GenerateResponse, error)

	// Close releases resources held by the generator.
	Close() error
}

var (
	// ErrUnavailable means the backend could not be reached.
	ErrUnavailable = errors.New("llm backend unavailable")

	// ErrTimeout means the backend did not answer in time.
	ErrTimeout = errors.New("llm backend timed out")
)

// Error is a backend failure carrying a user-facing message and the HTTP
// status the API should answer with.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

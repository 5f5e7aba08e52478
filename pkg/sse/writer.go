package sse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// Writer encodes "data: <json>\n\n" frames onto a destination io.Writer,
// flushing after every frame so each one reaches the client as soon as it is
// produced. It is safe for concurrent use.
type Writer struct {
	mu sync.Mutex
	w  *bufio.Writer
	fl http.Flusher
}

// NewWriter returns a Writer for dest. When dest implements http.Flusher it is
// flushed after each frame as well.
func NewWriter(dest io.Writer) *Writer {
	fl, _ := dest.(http.Flusher)
	return &Writer{
		w:  bufio.NewWriter(dest),
		fl: fl,
	}
}

// WriteJSON marshals v and writes it as a single data frame.
func (s *Writer) WriteJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return s.WriteData(b)
}

// WriteData writes data as a single data frame. data must not contain a
// blank line.
func (s *Writer) WriteData(data []byte) error {
	return s.write(DataPrefix + string(data) + Delimiter)
}

// WriteComment writes a comment frame, typically used as a keep-alive.
// Consumers skip it because it does not start with the data prefix.
func (s *Writer) WriteComment(text string) error {
	return s.write(fmt.Sprintf(": %s%s", text, Delimiter))
}

func (s *Writer) write(frame string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.WriteString(frame); err != nil {
		return err
	}

	if err := s.w.Flush(); err != nil {
		return err
	}

	if s.fl != nil {
		s.fl.Flush()
	}
	return nil
}

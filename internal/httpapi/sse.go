package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"chatd/pkg/types"
)

// sseWriter serializes stream events as text/event-stream frames:
// a token becomes `data: {"token":...}`, an error `data: {"error":...}`, and
// the end of a successful stream the literal sentinel `data: [DONE]`. Each
// frame is terminated by a blank line and flushed immediately.
type sseWriter struct {
	w       http.ResponseWriter
	flush   func()
	started bool
}

func newSSEWriter(w http.ResponseWriter) *sseWriter {
	var flush func()
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	}
	return &sseWriter{w: w, flush: flush}
}

// Started reports whether any frame has been written. Before the first frame
// the response is still uncommitted and a JSON error can be sent instead.
func (s *sseWriter) Started() bool { return s.started }

func (s *sseWriter) WriteToken(tok string) error {
	b, err := json.Marshal(types.StreamToken{Token: tok})
	if err != nil {
		return err
	}
	return s.writeFrame(b)
}

func (s *sseWriter) WriteError(msg string) error {
	b, err := json.Marshal(types.StreamError{Error: msg})
	if err != nil {
		return err
	}
	return s.writeFrame(b)
}

func (s *sseWriter) WriteDone() error {
	return s.writeFrame([]byte("[DONE]"))
}

func (s *sseWriter) writeFrame(payload []byte) error {
	if !s.started {
		h := s.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no") // disable proxy buffering
		s.started = true
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	if s.flush != nil {
		s.flush()
	}
	return nil
}

package proxyserver

import (
	"encoding/json"
	"fmt"
	"net/http"
)

var (
	sseEventPrefix = []byte("event: ")
	sseDataPrefix  = []byte("data: ")
	sseTerminator  = []byte("\n\n")
	sseNewline     = []byte("\n")
)

// sseWriter wraps http.ResponseWriter with the named-event SSE framing the
// Stream Translator's Sink needs: "event: <name>\ndata: <json>\n\n" per
// frame, flushed immediately so a client sees each event as soon as it's
// produced.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newSSEWriter validates flushing support and sets the response headers
// required of a streaming reply (§6: text/event-stream, no-cache, close).
func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "close")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &sseWriter{w: w, flusher: flusher}, nil
}

// write emits one named event frame with a JSON payload.
func (s *sseWriter) write(eventType string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sse payload: %w", err)
	}

	if _, err := s.w.Write(sseEventPrefix); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte(eventType)); err != nil {
		return err
	}
	if _, err := s.w.Write(sseNewline); err != nil {
		return err
	}
	if _, err := s.w.Write(sseDataPrefix); err != nil {
		return err
	}
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	if _, err := s.w.Write(sseTerminator); err != nil {
		return err
	}

	s.flusher.Flush()
	return nil
}

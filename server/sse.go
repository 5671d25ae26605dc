package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// eventWriter writes server-sent events and flushes after each one.
type eventWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func newEventWriter(w http.ResponseWriter) (*eventWriter, error) {
	rc := http.NewResponseController(w)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	// The first flush commits the 200 status and headers
	if err := rc.Flush(); err != nil {
		if errors.Is(err, http.ErrNotSupported) {
			return nil, errors.New("streaming is not supported by this connection")
		}
		return nil, err
	}
	return &eventWriter{w: w, rc: rc}, nil
}

// send writes one event. It returns false once the client is gone.
func (e *eventWriter) send(event string, data any) bool {
	payload, err := json.Marshal(data)
	if err != nil {
		return false
	}
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return false
	}
	return e.rc.Flush() == nil
}

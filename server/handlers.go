package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	streamui "github.com/haowjy/meridian-streamui-go"
	"github.com/haowjy/meridian-streamui-go/components"
)

const maxPromptBody = 64 << 10

// streamRequest is the body of a stream-component call.
type streamRequest struct {
	Prompt string `json:"prompt"`
}

// fragmentPayload is the data of fragment and error events.
type fragmentPayload struct {
	Kind  streamui.FragmentKind `json:"kind"`
	Text  string                `json:"text"`
	HTML  string                `json:"html"`
	Final bool                  `json:"final"`
}

func newFragmentPayload(f streamui.Fragment, final bool) fragmentPayload {
	return fragmentPayload{Kind: f.Kind, Text: f.Text, HTML: f.HTML, Final: final}
}

func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.homePath, http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStreamComponent(w http.ResponseWriter, r *http.Request) {
	prompt, err := readPrompt(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := newEventWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger := s.logger.With("request_id", RequestID(r.Context()))

	updates, err := s.action.StreamComponent(r.Context(), prompt)
	if err != nil {
		logger.Error("stream component failed", "error", err)
		events.send("error", newFragmentPayload(components.Error(err), true))
		events.send("done", struct{}{})
		return
	}

	for u := range updates {
		if u.Err != nil {
			logger.Warn("stream component ended with error", "error", u.Err)
			if !events.send("error", newFragmentPayload(components.Error(u.Err), true)) {
				break
			}
			continue
		}
		if !events.send("fragment", newFragmentPayload(u.Fragment, u.Final)) {
			break
		}
	}
	events.send("done", struct{}{})
}

// readPrompt accepts a JSON body or a form value named prompt.
// An empty prompt is allowed.
func readPrompt(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPromptBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req streamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", errors.New("invalid JSON body")
		}
		return req.Prompt, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", errors.New("invalid form body")
	}
	return r.PostForm.Get("prompt"), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

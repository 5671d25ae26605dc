package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/home.html
var templateFS embed.FS

var homeTemplate = template.Must(template.ParseFS(templateFS, "templates/home.html"))

type homeData struct {
	ActionPath string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := homeTemplate.Execute(&buf, homeData{ActionPath: ActionPath}); err != nil {
		s.logger.Error("render home page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

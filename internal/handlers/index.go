// internal/handlers/index.go
package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/highcard/internal/models"
	"github.com/jason-s-yu/highcard/internal/render"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type indexData struct {
	Board template.HTML
}

// HandleIndex serves the game page. The board starts idle; the page's
// WebSocket then owns the session.
func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	board, err := render.HTML(render.Render(models.NewGameSession(uuid.Nil)))
	if err != nil {
		s.Logger.Errorf("failed to render board: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// board is produced by html/template and already escaped
	if err := indexTemplate.Execute(w, indexData{Board: template.HTML(board)}); err != nil {
		s.Logger.Errorf("failed to render index: %v", err)
	}
}

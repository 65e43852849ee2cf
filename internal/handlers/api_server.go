// internal/handlers/api_server.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/highcard/internal/game"
	"github.com/jason-s-yu/highcard/internal/middleware"
	"github.com/sirupsen/logrus"
)

// GameService is the remote game service plus its health probe.
type GameService interface {
	game.RoundService
	Ping(ctx context.Context) (string, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	Logger    *logrus.Logger
	Sessions  *game.SessionStore
	Service   GameService
	Publisher game.RoundPublisher

	// AllowedOrigins restricts CORS and WebSocket origins when Production is set.
	AllowedOrigins []string
	Production     bool
}

// NewServer returns a Server with an empty session store.
func NewServer(logger *logrus.Logger, svc GameService) *Server {
	return &Server{
		Logger:   logger,
		Sessions: game.NewSessionStore(),
		Service:  svc,
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins(),
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	r.Use(middleware.LogMiddleware(s.Logger))

	r.Get("/", s.HandleIndex)
	r.Get("/status", s.HandleStatus)
	r.Get("/game/ws", s.GameWSHandler)
	return r
}

// corsOrigins allows only configured origins in production mode.
func (s *Server) corsOrigins() []string {
	if s.Production {
		return s.AllowedOrigins
	}
	return []string{"https://*", "http://*"}
}

// wsOriginPatterns mirrors corsOrigins for the WebSocket handshake.
func (s *Server) wsOriginPatterns() []string {
	if s.Production {
		return originHosts(s.AllowedOrigins)
	}
	return []string{"*"}
}

type statusResponse struct {
	Sessions int           `json:"sessions"`
	Service  serviceStatus `json:"service"`
}

type serviceStatus struct {
	Reachable bool   `json:"reachable"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleStatus reports live sessions and whether the game service answers.
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := statusResponse{Sessions: s.Sessions.Len()}
	msg, err := s.Service.Ping(ctx)
	if err != nil {
		resp.Service.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.Service.Reachable = true
	resp.Service.Message = msg
	writeJSON(w, http.StatusOK, resp)
}

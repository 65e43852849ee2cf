// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/highcard/internal/auth"
	"github.com/jason-s-yu/highcard/internal/game"
	"github.com/jason-s-yu/highcard/internal/middleware"
	"github.com/jason-s-yu/highcard/internal/models"
	"github.com/jason-s-yu/highcard/internal/render"
	"github.com/sirupsen/logrus"
)

const gameSubprotocol = "game"

// GameMessage is an incoming WebSocket message from the page.
type GameMessage struct {
	Type string `json:"type"`
}

// StateMessage is pushed to the page after every session change.
type StateMessage struct {
	Type    string             `json:"type"`
	Session models.GameSession `json:"session"`
	View    render.View        `json:"view"`
	HTML    string             `json:"html"`
}

// gameConn serializes writes to one WebSocket connection.
type gameConn struct {
	c       *websocket.Conn
	outChan chan interface{}
	logger  *logrus.Entry
}

// GameWSHandler upgrades the connection and runs one game session for it.
// The session lives exactly as long as the connection.
func (s *Server) GameWSHandler(w http.ResponseWriter, r *http.Request) {
	// The cookie must be set before the upgrade writes the response headers.
	browserID, err := auth.EnsureBrowserID(w, r)
	if err != nil {
		s.Logger.Warnf("browser identification failed: %v", err)
		http.Error(w, "failed to establish browser session", http.StatusInternalServerError)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{gameSubprotocol},
		OriginPatterns: s.wsOriginPatterns(),
	})
	if err != nil {
		s.Logger.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	if c.Subprotocol() != gameSubprotocol {
		c.Close(BadSubprotocolError, "client must speak the game subprotocol")
		return
	}
	middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, r.URL.Path)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sessionID := uuid.New()
	entry := s.Logger.WithFields(logrus.Fields{
		"browser": browserID,
		"remote":  r.RemoteAddr,
	})
	conn := &gameConn{
		c:       c,
		outChan: make(chan interface{}, 16),
		logger:  entry.WithField("session", sessionID),
	}

	opts := []game.Option{
		game.WithSessionID(sessionID),
		game.WithParentContext(ctx),
		game.WithLogger(entry),
		game.WithOnChange(func(snap models.GameSession) {
			conn.send(ctx, stateMessage(snap))
		}),
	}
	if s.Publisher != nil {
		opts = append(opts, game.WithPublisher(s.Publisher))
	}
	client := game.NewClient(s.Service, opts...)
	s.Sessions.Add(client)
	defer s.Sessions.Remove(sessionID)

	go conn.writePump(ctx)
	conn.send(ctx, stateMessage(client.Snapshot()))

	readErr := s.readGameMessages(ctx, conn, client)
	middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, readErr)
	c.Close(websocket.StatusNormalClosure, "")
}

// readGameMessages reads page messages until the connection or session ends.
// Actions run on their own goroutine so the page sees the pending state; the
// client admits one request at a time.
func (s *Server) readGameMessages(ctx context.Context, conn *gameConn, client *game.Client) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		// Server-side Close (SessionStore.CloseAll) must also end the read.
		select {
		case <-client.Done():
			conn.c.Close(SessionClosedError, "session closed")
		case <-stop:
		}
	}()

	for {
		msgType, data, err := conn.c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				conn.logger.Debug("websocket closed")
				return nil
			}
			return err
		}

		if msgType != websocket.MessageText {
			conn.logger.Warnf("Received non-text message type %d. Ignoring.", msgType)
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			conn.logger.Warnf("Invalid JSON received: %v", err)
			conn.sendError(ctx, "Invalid JSON format.")
			continue
		}

		conn.logger.Debugf("Received action '%s'", msg.Type)

		switch msg.Type {
		case string(render.ActionStartGame):
			go s.runAction(ctx, conn, msg.Type, client.StartGame)
		case string(render.ActionDrawCard):
			go s.runAction(ctx, conn, msg.Type, client.DrawCard)
		case "ping":
			conn.send(ctx, map[string]string{"type": "pong"})
		default:
			conn.sendError(ctx, fmt.Sprintf("Unknown action type: %s", msg.Type))
		}
	}
}

// runAction performs one session operation and reports a failure to the page.
// Successful changes reach the page through the client's change hook.
func (s *Server) runAction(ctx context.Context, conn *gameConn, action string, op func(context.Context) (models.GameSession, error)) {
	_, err := op(ctx)
	if err == nil || errors.Is(err, game.ErrSessionClosed) {
		return
	}
	conn.logger.WithField("action", action).WithError(err).Info("action failed")
	conn.sendError(ctx, game.UserMessage(err))
}

func stateMessage(snap models.GameSession) StateMessage {
	view := render.Render(snap)
	html, err := render.HTML(view)
	if err != nil {
		logrus.WithError(err).Error("failed to render board")
	}
	return StateMessage{Type: "state", Session: snap, View: view, HTML: html}
}

// send queues a message for the write pump.
func (gc *gameConn) send(ctx context.Context, msg interface{}) {
	select {
	case gc.outChan <- msg:
	case <-ctx.Done():
	}
}

// sendError queues a structured error message.
func (gc *gameConn) sendError(ctx context.Context, errorMsg string) {
	gc.send(ctx, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}

// writePump drains outChan onto the socket in order.
func (gc *gameConn) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-gc.outChan:
			data, err := json.Marshal(msg)
			if err != nil {
				gc.logger.Errorf("Error marshaling WebSocket message: %v", err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = gc.c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				gc.logger.Warnf("Error writing WebSocket message: %v", err)
				return
			}
		}
	}
}

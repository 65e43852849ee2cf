// internal/handlers/game_ws_test.go
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/highcard/internal/auth"
	"github.com/jason-s-yu/highcard/internal/gameapi"
	"github.com/jason-s-yu/highcard/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	startRound = `{"round_info":[` +
		`{"player_name":"A","drawn_card":{"image":"a.png"},"score":0},` +
		`{"player_name":"B","drawn_card":{"image":"b.png"},"score":0}],` +
		`"finished":false,"winner":""}`
	finalRound = `{"round_info":[` +
		`{"player_name":"A","drawn_card":{"image":"a2.png"},"score":1},` +
		`{"player_name":"B","drawn_card":{"image":"b2.png"},"score":0}],` +
		`"finished":true,"winner":"A"}`
)

// newTestServer wires a Server to a stub game service speaking the real wire format.
func newTestServer(t *testing.T, serviceUp bool) (*Server, *httptest.Server) {
	t.Helper()
	require.NoError(t, auth.Init(""))

	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !serviceUp {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/":
			io.WriteString(w, `{"message":"Game of Cards..."}`)
		case "/start":
			io.WriteString(w, startRound)
		case "/draw-cards":
			io.WriteString(w, finalRound)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(service.Close)

	svc, err := gameapi.NewClient(service.URL)
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	s := NewServer(logger, svc)

	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return s, srv
}

func dialGame(t *testing.T, ctx context.Context, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/ws"
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{Subprotocols: []string{"game"}})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(websocket.StatusNormalClosure, "") })
	return c
}

type wsMessage struct {
	Type    string             `json:"type"`
	Message string             `json:"message"`
	Session models.GameSession `json:"session"`
	HTML    string             `json:"html"`
}

func readMessage(t *testing.T, ctx context.Context, c *websocket.Conn) wsMessage {
	t.Helper()
	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	var msg wsMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

// readUntil skips messages until match accepts one.
func readUntil(t *testing.T, ctx context.Context, c *websocket.Conn, match func(wsMessage) bool) wsMessage {
	t.Helper()
	for {
		msg := readMessage(t, ctx, c)
		if match(msg) {
			return msg
		}
	}
}

func sendAction(t *testing.T, ctx context.Context, c *websocket.Conn, action string) {
	t.Helper()
	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte(`{"type":"`+action+`"}`)))
}

func settled(phase models.Phase) func(wsMessage) bool {
	return func(m wsMessage) bool {
		return m.Type == "state" && m.Session.Phase == phase && !m.Session.Pending
	}
}

// TestGameWSFlow plays a whole match over the socket.
func TestGameWSFlow(t *testing.T) {
	s, srv := newTestServer(t, true)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dialGame(t, ctx, srv)

	initial := readMessage(t, ctx, c)
	assert.Equal(t, "state", initial.Type)
	assert.Equal(t, models.PhaseIdle, initial.Session.Phase)
	assert.Contains(t, initial.HTML, "Start game")
	assert.Equal(t, 1, s.Sessions.Len())

	sendAction(t, ctx, c, "start_game")
	started := readUntil(t, ctx, c, settled(models.PhaseStarted))
	require.NotNil(t, started.Session.Player1)
	assert.Equal(t, "A", started.Session.Player1.PlayerName)
	assert.Equal(t, "b.png", started.Session.Player2.DrawnCard.Image)
	assert.Contains(t, started.HTML, "Draw card")

	sendAction(t, ctx, c, "draw_card")
	finished := readUntil(t, ctx, c, settled(models.PhaseFinished))
	assert.Equal(t, "A", finished.Session.Winner)
	assert.Contains(t, finished.HTML, "Winner is player A")
	assert.NotContains(t, finished.HTML, "<button")

	// Finished is terminal.
	sendAction(t, ctx, c, "draw_card")
	errMsg := readUntil(t, ctx, c, func(m wsMessage) bool { return m.Type == "error" })
	assert.NotEmpty(t, errMsg.Message)

	c.Close(websocket.StatusNormalClosure, "")
	assert.Eventually(t, func() bool { return s.Sessions.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// TestGameWSDrawBeforeStart reports the precondition violation to the page.
func TestGameWSDrawBeforeStart(t *testing.T) {
	_, srv := newTestServer(t, true)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dialGame(t, ctx, srv)
	readMessage(t, ctx, c)

	sendAction(t, ctx, c, "draw_card")
	msg := readMessage(t, ctx, c)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "That action is not available right now.", msg.Message)
}

// TestGameWSServiceFailure surfaces a failed start as an error state.
func TestGameWSServiceFailure(t *testing.T) {
	_, srv := newTestServer(t, false)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dialGame(t, ctx, srv)
	readMessage(t, ctx, c)

	sendAction(t, ctx, c, "start_game")
	failed := readUntil(t, ctx, c, func(m wsMessage) bool {
		return m.Type == "state" && m.Session.LastError != ""
	})
	assert.Equal(t, models.PhaseIdle, failed.Session.Phase)
	assert.Equal(t, "The game service request failed.", failed.Session.LastError)
	assert.NotContains(t, failed.HTML, "Bad Gateway")
	assert.Contains(t, failed.HTML, `role="alert"`)
	assert.Contains(t, failed.HTML, "Start game")

	msg := readUntil(t, ctx, c, func(m wsMessage) bool { return m.Type == "error" })
	assert.Equal(t, "The game service request failed.", msg.Message)
}

func TestGameWSUnknownAndPing(t *testing.T) {
	_, srv := newTestServer(t, true)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dialGame(t, ctx, srv)
	readMessage(t, ctx, c)

	sendAction(t, ctx, c, "shuffle")
	msg := readMessage(t, ctx, c)
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Message, "shuffle")

	sendAction(t, ctx, c, "ping")
	assert.Equal(t, "pong", readMessage(t, ctx, c).Type)

	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte("not json")))
	assert.Equal(t, "error", readMessage(t, ctx, c).Type)
}

func TestGameWSRequiresSubprotocol(t *testing.T) {
	_, srv := newTestServer(t, true)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/ws"
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "")

	_, _, err = c.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, BadSubprotocolError, websocket.CloseStatus(err))
}

func TestGameWSServerShutdownClosesSocket(t *testing.T) {
	s, srv := newTestServer(t, true)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dialGame(t, ctx, srv)
	readMessage(t, ctx, c)

	s.Sessions.CloseAll()
	_, _, err := c.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, SessionClosedError, websocket.CloseStatus(err))
}

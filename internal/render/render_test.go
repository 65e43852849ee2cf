// internal/render/render_test.go
package render

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/highcard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedSession() models.GameSession {
	return models.GameSession{
		ID:      uuid.New(),
		Phase:   models.PhaseStarted,
		Player1: &models.PlayerRoundState{PlayerName: "A", DrawnCard: models.Card{Image: "a.png"}, Score: 0},
		Player2: &models.PlayerRoundState{PlayerName: "B", DrawnCard: models.Card{Image: "b.png", Suit: "HEARTS", Value: 12}, Score: 0},
		Round:   1,
	}
}

func TestRenderIdle(t *testing.T) {
	v := Render(models.NewGameSession(uuid.New()))
	assert.Empty(t, v.Players)
	require.NotNil(t, v.Control)
	assert.Equal(t, ActionStartGame, v.Control.Action)
	assert.Equal(t, "Start game", v.Control.Label)
	assert.False(t, v.Control.Disabled)
	assert.Empty(t, v.Status)
}

func TestRenderStarted(t *testing.T) {
	v := Render(startedSession())
	require.Len(t, v.Players, 2)
	assert.Equal(t, PlayerPanel{Name: "A", Image: "a.png", CardText: "card", Score: 0}, v.Players[0])
	assert.Equal(t, "12 of HEARTS", v.Players[1].CardText)
	require.NotNil(t, v.Control)
	assert.Equal(t, ActionDrawCard, v.Control.Action)
	assert.Equal(t, "Draw card", v.Control.Label)
}

func TestRenderPendingDisablesControl(t *testing.T) {
	s := startedSession()
	s.Pending = true
	v := Render(s)
	require.NotNil(t, v.Control)
	assert.True(t, v.Control.Disabled)

	out, err := HTML(v)
	require.NoError(t, err)
	assert.Contains(t, out, " disabled>Draw card</button>")
}

func TestRenderFinishedWinner(t *testing.T) {
	s := startedSession()
	s.Phase = models.PhaseFinished
	s.Winner = "A"
	v := Render(s)
	assert.Nil(t, v.Control)
	assert.Equal(t, "Winner is player A", v.Status)
	assert.Len(t, v.Players, 2)

	out, err := HTML(v)
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="status">Winner is player A</div>`)
	assert.NotContains(t, out, "<button")
}

func TestRenderFinishedTie(t *testing.T) {
	s := startedSession()
	s.Phase = models.PhaseFinished
	s.Winner = models.TieWinner
	v := Render(s)
	assert.Equal(t, "The match is a tie.", v.Status)
}

func TestRenderError(t *testing.T) {
	s := models.NewGameSession(uuid.New())
	s.LastError = "The game service request failed."
	v := Render(s)
	assert.Equal(t, s.LastError, v.Error)

	out, err := HTML(v)
	require.NoError(t, err)
	assert.Contains(t, out, `role="alert"`)
	assert.Contains(t, out, "Start game")
}

func TestRenderIsDeterministic(t *testing.T) {
	s := startedSession()
	first, err := HTML(Render(s))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := HTML(Render(s))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestHTMLEscapesServiceData(t *testing.T) {
	s := startedSession()
	s.Player1.PlayerName = `<script>alert(1)</script>`
	s.Player1.DrawnCard.Image = `javascript:alert(1)`

	out, err := HTML(Render(s))
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestFinishStatement(t *testing.T) {
	assert.Equal(t, "Winner is player B", FinishStatement("B"))
	assert.Equal(t, "The match is a tie.", FinishStatement(""))
}

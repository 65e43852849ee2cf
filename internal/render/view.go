// internal/render/view.go
package render

import (
	"fmt"

	"github.com/jason-s-yu/highcard/internal/models"
)

// Action identifies what the primary control does when pressed.
type Action string

const (
	ActionStartGame Action = "start_game"
	ActionDrawCard  Action = "draw_card"
)

const (
	labelStartGame = "Start game"
	labelDrawCard  = "Draw card"
	statusTie      = "The match is a tie."
)

// PlayerPanel is one player's card, name and score.
type PlayerPanel struct {
	Name     string `json:"name"`
	Image    string `json:"image"`
	CardText string `json:"card_text,omitempty"`
	Score    int    `json:"score"`
}

// Control is the primary action button.
type Control struct {
	Action   Action `json:"action"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// View is everything the page shows for one session.
type View struct {
	Phase   models.Phase  `json:"phase"`
	Players []PlayerPanel `json:"players,omitempty"`
	Control *Control      `json:"control,omitempty"`
	Status  string        `json:"status,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Render maps a session snapshot to its view. It has no side effects.
func Render(s models.GameSession) View {
	v := View{Phase: s.Phase, Error: s.LastError}

	switch s.Phase {
	case models.PhaseIdle:
		v.Control = &Control{Action: ActionStartGame, Label: labelStartGame, Disabled: s.Pending}
	case models.PhaseStarted:
		v.Players = panels(s)
		v.Control = &Control{Action: ActionDrawCard, Label: labelDrawCard, Disabled: s.Pending}
	case models.PhaseFinished:
		v.Players = panels(s)
		v.Status = FinishStatement(s.Winner)
	}
	return v
}

// FinishStatement is the banner shown once the match is over.
func FinishStatement(winner string) string {
	if winner == models.TieWinner {
		return statusTie
	}
	return fmt.Sprintf("Winner is player %s", winner)
}

func panels(s models.GameSession) []PlayerPanel {
	out := make([]PlayerPanel, 0, 2)
	for _, p := range []*models.PlayerRoundState{s.Player1, s.Player2} {
		if p == nil {
			continue
		}
		out = append(out, PlayerPanel{
			Name:     p.PlayerName,
			Image:    p.DrawnCard.Image,
			CardText: cardText(p.DrawnCard),
			Score:    p.Score,
		})
	}
	return out
}

// cardText is the alt text of a card image, e.g. "12 of HEARTS".
func cardText(c models.Card) string {
	switch {
	case c.Suit != "" && c.Value > 0:
		return fmt.Sprintf("%d of %s", c.Value, c.Suit)
	case c.Suit != "":
		return c.Suit
	case c.Value > 0:
		return fmt.Sprintf("%d", c.Value)
	}
	return "card"
}

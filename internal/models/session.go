// internal/models/session.go
package models

import "github.com/google/uuid"

// Phase is the coarse lifecycle stage of a game session.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseStarted  Phase = "started"
	PhaseFinished Phase = "finished"
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	return string(p)
}

// TieWinner is the winner value of a finished match that nobody won.
const TieWinner = ""

// GameSession is the state of one game as seen by a single UI mount.
//
// Invariants:
//   - PhaseIdle has no players.
//   - PhaseFinished has both players and Winner is either one of their
//     names or TieWinner.
type GameSession struct {
	ID      uuid.UUID         `json:"id"`
	Phase   Phase             `json:"phase"`
	Player1 *PlayerRoundState `json:"player1,omitempty"`
	Player2 *PlayerRoundState `json:"player2,omitempty"`
	Winner  string            `json:"winner"`

	// Round counts the rounds applied so far (the start round included).
	Round int `json:"round"`

	// Pending is true while a request to the game service is in flight.
	Pending bool `json:"pending"`

	// LastError is the user-facing text of the most recent failed
	// operation, cleared by the next successful one.
	LastError string `json:"last_error,omitempty"`
}

// NewGameSession returns an idle session with the given ID.
func NewGameSession(id uuid.UUID) GameSession {
	return GameSession{ID: id, Phase: PhaseIdle}
}

// Clone returns a deep copy that shares no pointers with s.
func (s GameSession) Clone() GameSession {
	out := s
	if s.Player1 != nil {
		p := *s.Player1
		out.Player1 = &p
	}
	if s.Player2 != nil {
		p := *s.Player2
		out.Player2 = &p
	}
	return out
}

// HasPlayer reports whether name is one of the session's two players.
func (s GameSession) HasPlayer(name string) bool {
	if s.Player1 != nil && s.Player1.PlayerName == name {
		return true
	}
	return s.Player2 != nil && s.Player2.PlayerName == name
}

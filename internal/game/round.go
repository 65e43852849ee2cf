// internal/game/round.go
package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/highcard/internal/models"
)

// RoundRecord is the feed entry emitted for every applied round.
type RoundRecord struct {
	SessionID uuid.UUID                 `json:"session_id"`
	Round     int                       `json:"round"`
	Action    string                    `json:"action"`
	Phase     models.Phase              `json:"phase"`
	Players   []models.PlayerRoundState `json:"players"`
	Winner    *string                   `json:"winner,omitempty"`
	Timestamp int64                     `json:"timestamp"`
}

// RoundPublisher receives round records. Implementations must not block for long.
type RoundPublisher interface {
	PublishRound(ctx context.Context, rec RoundRecord) error
}

// NewRoundRecord builds the record for snap after action was applied at ts.
// Winner is only set once the match is finished; an empty string then means a tie.
func NewRoundRecord(action string, snap models.GameSession, ts time.Time) RoundRecord {
	rec := RoundRecord{
		SessionID: snap.ID,
		Round:     snap.Round,
		Action:    action,
		Phase:     snap.Phase,
		Timestamp: ts.UnixMilli(),
	}
	for _, p := range []*models.PlayerRoundState{snap.Player1, snap.Player2} {
		if p != nil {
			rec.Players = append(rec.Players, *p)
		}
	}
	if snap.Phase == models.PhaseFinished {
		w := snap.Winner
		rec.Winner = &w
	}
	return rec
}

// internal/models/player.go
package models

// PlayerRoundState is one player's result for the latest round.
// Each round replaces the previous value wholesale.
type PlayerRoundState struct {
	PlayerName string `json:"player_name"`
	DrawnCard  Card   `json:"drawn_card"`
	Score      int    `json:"score"`
}

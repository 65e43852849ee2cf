// internal/models/card.go
package models

// Card is the face of a drawn card as reported by the game service.
// Only Image is required; Suit and Value are informational.
type Card struct {
	Image string `json:"image"`
	Suit  string `json:"suit,omitempty"`
	Value int    `json:"value,omitempty"`
}

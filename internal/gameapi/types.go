// internal/gameapi/types.go
package gameapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jason-s-yu/highcard/internal/models"
)

// ErrMalformedResponse is returned when a service answer does not match the
// round contract.
var ErrMalformedResponse = errors.New("malformed game service response")

// RoundResponse is a validated round as returned by /start and /draw-cards.
type RoundResponse struct {
	Players  [2]models.PlayerRoundState
	Finished bool

	// Winner is models.TieWinner when the match is tied or still running.
	Winner string
}

type cardDTO struct {
	Image *string     `json:"image"`
	Suit  looseString `json:"suit"`
	Value cardValue   `json:"value"`
}

// faceValues ranks the deck API's named cards.
var faceValues = map[string]int{
	"TEN":   10,
	"JACK":  11,
	"QUEEN": 12,
	"KING":  13,
	"ACE":   14,
}

// cardValue accepts a number, a numeric string or a face name. Anything else
// decodes to 0; the value is informational and never rejects a round.
type cardValue int

func (v *cardValue) UnmarshalJSON(data []byte) error {
	*v = 0
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*v = cardValue(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if rank, ok := faceValues[s]; ok {
		*v = cardValue(rank)
	} else if n, err := strconv.Atoi(s); err == nil {
		*v = cardValue(n)
	}
	return nil
}

// looseString keeps a JSON string and drops any other JSON value.
type looseString string

func (ls *looseString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*ls = ""
		return nil
	}
	*ls = looseString(s)
	return nil
}

type playerRoundDTO struct {
	PlayerName string   `json:"player_name"`
	DrawnCard  *cardDTO `json:"drawn_card"`
	Score      *int     `json:"score"`
}

// roundPayload is the raw wire shape. The service answers /draw-cards with
// {"message": ...} when it has no game, so both shapes decode here.
type roundPayload struct {
	RoundInfo []playerRoundDTO `json:"round_info"`
	Finished  bool             `json:"finished"`
	Winner    *string          `json:"winner"`
	Message   string           `json:"message,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// toResponse validates the payload and converts it into a RoundResponse.
func (p roundPayload) toResponse() (*RoundResponse, error) {
	if len(p.RoundInfo) != 2 {
		return nil, malformed("expected 2 round_info entries, got %d", len(p.RoundInfo))
	}

	resp := &RoundResponse{Finished: p.Finished}
	for i, dto := range p.RoundInfo {
		player, err := dto.toModel()
		if err != nil {
			return nil, fmt.Errorf("round_info[%d]: %w", i, err)
		}
		resp.Players[i] = player
	}
	if resp.Players[0].PlayerName == resp.Players[1].PlayerName {
		return nil, malformed("both players are named %q", resp.Players[0].PlayerName)
	}

	// A null winner is the tie sentinel.
	if p.Winner != nil {
		resp.Winner = *p.Winner
	}
	if resp.Finished && resp.Winner != models.TieWinner &&
		resp.Winner != resp.Players[0].PlayerName && resp.Winner != resp.Players[1].PlayerName {
		return nil, malformed("winner %q is not a player", resp.Winner)
	}
	if !resp.Finished {
		resp.Winner = models.TieWinner
	}
	return resp, nil
}

func (d playerRoundDTO) toModel() (models.PlayerRoundState, error) {
	if d.PlayerName == "" {
		return models.PlayerRoundState{}, malformed("missing player_name")
	}
	if d.DrawnCard == nil || d.DrawnCard.Image == nil || *d.DrawnCard.Image == "" {
		return models.PlayerRoundState{}, malformed("missing drawn_card.image for %q", d.PlayerName)
	}
	if _, err := url.Parse(*d.DrawnCard.Image); err != nil {
		return models.PlayerRoundState{}, malformed("invalid image url for %q: %v", d.PlayerName, err)
	}
	if d.Score == nil {
		return models.PlayerRoundState{}, malformed("missing score for %q", d.PlayerName)
	}
	if *d.Score < 0 {
		return models.PlayerRoundState{}, malformed("negative score %d for %q", *d.Score, d.PlayerName)
	}
	return models.PlayerRoundState{
		PlayerName: d.PlayerName,
		DrawnCard: models.Card{
			Image: *d.DrawnCard.Image,
			Suit:  string(d.DrawnCard.Suit),
			Value: int(d.DrawnCard.Value),
		},
		Score: *d.Score,
	}, nil
}

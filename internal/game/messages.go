// internal/game/messages.go
package game

import (
	"context"
	"errors"

	"github.com/jason-s-yu/highcard/internal/gameapi"
)

// UserMessage turns an operation error into text safe to show on the page.
// Transport details such as the service address stay in the logs.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrRequestInFlight):
		return "Please wait for the current draw to finish."
	case errors.Is(err, ErrWrongPhase):
		return "That action is not available right now."
	case errors.Is(err, context.DeadlineExceeded):
		return "The game service did not answer in time."
	case errors.Is(err, gameapi.ErrNoGameInProgress):
		return "The game service has no game in progress. Please start a new game."
	case errors.Is(err, gameapi.ErrMalformedResponse):
		return "The game service sent an answer that could not be read."
	}
	return "The game service request failed."
}

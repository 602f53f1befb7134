// internal/handlers/messages.go
package handlers

import (
	"encoding/json"
	"errors"

	"github.com/jason-s-yu/bussfix/internal/auth"
	"github.com/jason-s-yu/bussfix/internal/game"
	"github.com/jason-s-yu/bussfix/internal/models"
	"github.com/jason-s-yu/bussfix/internal/room"
)

// Envelope is every client frame: {"type": ..., "payload": {...}}.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type seatRequest struct {
	RoomID   string `json:"roomId"`
	Name     string `json:"name"`
	Passcode string `json:"passcode,omitempty"`
}

type resumeRequest struct {
	Token string `json:"token"`
}

type startRequest struct {
	JokerCount int `json:"jokerCount"`
}

type playRequest struct {
	Cards []models.CardRef `json:"cards"`
}

type jokerRequest struct {
	CardID int    `json:"cardId"`
	Rank   string `json:"rank"`
}

type giveSipRequest struct {
	TargetID string `json:"targetId"`
}

// decodePayload tolerates an absent payload for the actions that take none.
func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func ackOK(seat room.Seat) room.Message {
	return room.Message{
		"type":          "ack",
		"ok":            true,
		"token":         seat.Token,
		"participantId": seat.ParticipantID,
		"roomId":        seat.RoomID,
	}
}

func ackFailed(err error) room.Message {
	return room.Message{"type": "ack", "ok": false, "reason": reason(err)}
}

// reason turns an error into the text shown to the player. Anything not
// raised by validation is reported generically.
func reason(err error) string {
	var re *game.RuleError
	switch {
	case errors.As(err, &re):
		return re.Reason
	case errors.Is(err, game.ErrInvariant):
		return "internal error"
	case errors.Is(err, auth.ErrInvalidSeatToken):
		return auth.ErrInvalidSeatToken.Error()
	case isKnown(err):
		return err.Error()
	default:
		return "request failed"
	}
}

var knownErrors = []error{
	room.ErrRoomExists, room.ErrRoomNotFound, room.ErrGameInProgress, room.ErrBadPasscode,
	room.ErrRoomFull, room.ErrNotHost, room.ErrNotEnoughPlayers, room.ErrNotPlayerTurn,
	room.ErrNoSession, room.ErrNotSeated, room.ErrBadName, room.ErrRegistryClosed,
	game.ErrGameNotPlaying, game.ErrDecisionPending, game.ErrNoDecision, game.ErrCardNotInHand,
	game.ErrDuplicateCard, game.ErrNotJoker, game.ErrBadSipTarget, game.ErrPlayerCount,
}

func isKnown(err error) bool {
	for _, k := range knownErrors {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/bussfix/internal/models"
)

// HiddenCard stands in for a card the recipient may not see. It marshals to
// an empty object.
type HiddenCard struct{}

// PlayerView is one seat as seen by a particular recipient.
type PlayerView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	// Hand holds models.Card values for the recipient's own seat and
	// HiddenCard placeholders for everyone else.
	Hand     []interface{} `json:"hand"`
	HandSize int           `json:"handSize"`
	Drinks   int           `json:"drinks"`
	Out      bool          `json:"out"`
}

// SessionView is the per-recipient projection of a Session that gets sent
// over the wire. The deck is reduced to its size.
type SessionView struct {
	GameID          uuid.UUID    `json:"gameId"`
	Stage           Stage        `json:"stage"`
	JokerCount      int          `json:"jokers"`
	Players         []PlayerView `json:"players"`
	Turn            int          `json:"turn"`
	CurrentPlayerID string       `json:"currentPlayerId"`
	DeckSize        int          `json:"deckSize"`
	Pile            []Play       `json:"pile"`
	TopBlock        TopBlock     `json:"topBlock"`
	Threshold       *models.Rank `json:"compareRank"`
	Messages        []string     `json:"messages"`
	Winners         []string     `json:"winners"`
	Pending         *Decision    `json:"pending,omitempty"`
	You             string       `json:"you"`
}

// FilterFor projects s for recipientID. Only the recipient's own hand keeps
// its contents; other hands keep their length.
func FilterFor(s *Session, recipientID string) SessionView {
	view := SessionView{
		GameID:     s.ID,
		Stage:      s.Stage,
		JokerCount: s.JokerCount,
		Turn:       s.Turn,
		DeckSize:   len(s.Deck),
		Pile:       append([]Play{}, s.Pile...),
		TopBlock:   PileTop(s.Pile),
		Messages:   append([]string{}, s.Messages...),
		Winners:    append([]string{}, s.Winners...),
		You:        recipientID,
	}
	if s.Threshold != nil {
		t := *s.Threshold
		view.Threshold = &t
	}
	if s.Pending != nil {
		d := *s.Pending
		view.Pending = &d
	}
	if cur := s.CurrentPlayer(); cur != nil {
		view.CurrentPlayerID = cur.ID
	}

	for _, p := range s.Players {
		pv := PlayerView{
			ID:       p.ID,
			Name:     p.Name,
			Hand:     make([]interface{}, len(p.Hand)),
			HandSize: len(p.Hand),
			Drinks:   p.Drinks,
			Out:      p.Out,
		}
		for i, c := range p.Hand {
			if p.ID == recipientID {
				pv.Hand[i] = c
			} else {
				pv.Hand[i] = HiddenCard{}
			}
		}
		view.Players = append(view.Players, pv)
	}
	return view
}

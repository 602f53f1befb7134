// internal/game/game.go
package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/bussfix/internal/dependencies/random"
	"github.com/jason-s-yu/bussfix/internal/models"
)

// Stage is the session lifecycle: lobby -> playing -> ended.
type Stage string

const (
	StageLobby   Stage = "lobby"
	StagePlaying Stage = "playing"
	StageEnded   Stage = "ended"
)

const (
	MinPlayers = 2
	MaxPlayers = 6
	HandSize   = 3
)

// Seat is a player entering a new session.
type Seat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Play is the set of cards laid down in one turn.
type Play struct {
	Cards []models.Card `json:"cards"`
	By    string        `json:"by"`
}

// Session is the authoritative state of one game. It is not safe for
// concurrent use; the owning room serializes access.
type Session struct {
	ID         uuid.UUID
	Stage      Stage
	JokerCount int
	Players    []*models.Player
	Turn       int
	Deck       []models.Card
	Pile       []Play
	// Threshold is the rank the next play has to meet; nil accepts anything.
	Threshold *models.Rank
	// Messages is newest first.
	Messages []string
	// Winners holds player ids in the order they went out.
	Winners []string
	// Pending blocks the turn until the current player's choice is fed back.
	Pending *Decision

	rng random.Random
}

// NewSession shuffles a fresh deck and deals three cards to every seat, one
// card per seat per round, taken from the end of the deck.
func NewSession(id uuid.UUID, seats []Seat, jokerCount int, rng random.Random) (*Session, error) {
	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return nil, fmt.Errorf("%w: got %d", ErrPlayerCount, len(seats))
	}

	s := &Session{
		ID:         id,
		Stage:      StagePlaying,
		JokerCount: ClampJokers(jokerCount),
		Players:    make([]*models.Player, len(seats)),
		Deck:       NewDeck(jokerCount, rng),
		rng:        rng,
	}
	for i, seat := range seats {
		s.Players[i] = &models.Player{ID: seat.ID, Name: seat.Name, Hand: []models.Card{}}
	}

	for round := 0; round < HandSize; round++ {
		for _, p := range s.Players {
			if c, ok := s.drawFromDeck(); ok {
				p.Hand = append(p.Hand, c)
			}
		}
	}

	s.logf("Game started!")
	return s, nil
}

// CurrentPlayer returns the player whose turn it is.
func (s *Session) CurrentPlayer() *models.Player {
	if len(s.Players) == 0 {
		return nil
	}
	return s.Players[s.Turn]
}

// PlayerByID returns the seat with the given id, or nil.
func (s *Session) PlayerByID(id string) *models.Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ActivePlayers returns every player that is not out, in table order.
func (s *Session) ActivePlayers() []*models.Player {
	active := make([]*models.Player, 0, len(s.Players))
	for _, p := range s.Players {
		if !p.Out {
			active = append(active, p)
		}
	}
	return active
}

// FlatPile returns the pile cards in the order they were played.
func (s *Session) FlatPile() []models.Card {
	var cards []models.Card
	for _, pl := range s.Pile {
		cards = append(cards, pl.Cards...)
	}
	return cards
}

// CardCount totals every card in hands, pile and deck.
func (s *Session) CardCount() int {
	n := len(s.Deck)
	for _, pl := range s.Pile {
		n += len(pl.Cards)
	}
	for _, p := range s.Players {
		n += len(p.Hand)
	}
	return n
}

// SetRandom replaces the source used for bottle spins.
func (s *Session) SetRandom(rng random.Random) {
	s.rng = rng
}

func (s *Session) drawFromDeck() (models.Card, bool) {
	if len(s.Deck) == 0 {
		return nil, false
	}
	c := s.Deck[len(s.Deck)-1]
	s.Deck = s.Deck[:len(s.Deck)-1]
	return c, true
}

func (s *Session) logf(format string, args ...interface{}) {
	s.Messages = append([]string{fmt.Sprintf(format, args...)}, s.Messages...)
}

func (s *Session) everyoneDrinks(sips int) {
	for _, p := range s.Players {
		if !p.Out {
			p.Drinks += sips
		}
	}
}

func (s *Session) requirePlaying() error {
	if s.Stage != StagePlaying {
		return ErrGameNotPlaying
	}
	return nil
}

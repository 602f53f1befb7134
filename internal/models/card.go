// internal/models/card.go
package models

import (
	"encoding/json"
	"fmt"
)

// Suit is one of the four French suits, or the joker pseudo-suit.
type Suit string

const (
	Hearts    Suit = "hearts"
	Diamonds  Suit = "diamonds"
	Clubs     Suit = "clubs"
	Spades    Suit = "spades"
	JokerSuit Suit = "joker"
)

// Suits lists the standard suits in deck-building order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Rank is a standard card rank. Jokers never carry a Rank of their own.
type Rank string

const (
	Rank2  Rank = "2"
	Rank3  Rank = "3"
	Rank4  Rank = "4"
	Rank5  Rank = "5"
	Rank6  Rank = "6"
	Rank7  Rank = "7"
	Rank8  Rank = "8"
	Rank9  Rank = "9"
	Rank10 Rank = "10"
	Jack   Rank = "J"
	Queen  Rank = "Q"
	King   Rank = "K"
	Ace    Rank = "A"
)

// JokerMarker is the rank string jokers report on the wire.
const JokerMarker = "JOKER"

// RankOrder lists ranks from lowest to highest. 2 ranks above the ace.
var RankOrder = []Rank{Rank3, Rank4, Rank5, Rank6, Rank7, Rank8, Rank9, Rank10, Jack, Queen, King, Ace, Rank2}

// RankValue returns the position of r in RankOrder, or -1 for an unknown rank.
func RankValue(r Rank) int {
	for i, o := range RankOrder {
		if o == r {
			return i
		}
	}
	return -1
}

// ParseRank validates a rank string.
func ParseRank(s string) (Rank, error) {
	r := Rank(s)
	if RankValue(r) < 0 {
		return "", fmt.Errorf("unknown rank %q", s)
	}
	return r, nil
}

// Card is either a *StandardCard or a *JokerCard.
type Card interface {
	CardID() int
	// EffectiveRank is the rank used for comparisons. ok is false for a joker
	// that has not been given a declared rank yet.
	EffectiveRank() (rank Rank, ok bool)
	IsJoker() bool
	// Label is the short text used in log lines.
	Label() string
	isCard()
}

// StandardCard is one of the 52 suited cards.
type StandardCard struct {
	ID   int
	Suit Suit
	Rank Rank
}

func (c *StandardCard) CardID() int                 { return c.ID }
func (c *StandardCard) EffectiveRank() (Rank, bool) { return c.Rank, true }
func (c *StandardCard) IsJoker() bool               { return false }
func (c *StandardCard) Label() string               { return string(c.Rank) }
func (c *StandardCard) isCard()                     {}

// JokerCard impersonates whatever rank its holder declares for it.
type JokerCard struct {
	ID           int
	DeclaredRank *Rank
}

func (c *JokerCard) CardID() int   { return c.ID }
func (c *JokerCard) IsJoker() bool { return true }
func (c *JokerCard) isCard()       {}

func (c *JokerCard) EffectiveRank() (Rank, bool) {
	if c.DeclaredRank == nil {
		return "", false
	}
	return *c.DeclaredRank, true
}

func (c *JokerCard) Label() string {
	if c.DeclaredRank == nil {
		return "J(?)"
	}
	return "J(" + string(*c.DeclaredRank) + ")"
}

// Declare sets the rank this joker stands for.
func (c *JokerCard) Declare(r Rank) {
	c.DeclaredRank = &r
}

// wireCard is the JSON shape shared by both card kinds.
type wireCard struct {
	ID           int    `json:"id"`
	Suit         Suit   `json:"suit"`
	Rank         string `json:"rank"`
	DeclaredRank *Rank  `json:"declaredRank,omitempty"`
}

func (c *StandardCard) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCard{ID: c.ID, Suit: c.Suit, Rank: string(c.Rank)})
}

func (c *JokerCard) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCard{ID: c.ID, Suit: JokerSuit, Rank: JokerMarker, DeclaredRank: c.DeclaredRank})
}

// CardRef is how clients point at a card in their own hand. The server only
// trusts the id; DeclaredRank is honoured for jokers as an inline declaration.
type CardRef struct {
	ID           int    `json:"id"`
	DeclaredRank string `json:"declaredRank,omitempty"`
}

package game

import (
	"github.com/jason-s-yu/bussfix/internal/dependencies/random"
	"github.com/jason-s-yu/bussfix/internal/models"
)

const (
	MinJokers = 2
	MaxJokers = 5

	standardDeckSize = 52
)

// standardRanks is the deck-building order; it has no bearing on play.
var standardRanks = []models.Rank{
	models.Ace, models.King, models.Queen, models.Jack, models.Rank10, models.Rank9,
	models.Rank8, models.Rank7, models.Rank6, models.Rank5, models.Rank4, models.Rank3, models.Rank2,
}

// ClampJokers forces a joker count into [MinJokers, MaxJokers].
func ClampJokers(n int) int {
	if n < MinJokers {
		return MinJokers
	}
	if n > MaxJokers {
		return MaxJokers
	}
	return n
}

// NewDeck builds 52 standard cards plus the clamped number of jokers and
// shuffles them with rng. Ids run from 1 upwards.
func NewDeck(jokerCount int, rng random.Random) []models.Card {
	jokers := ClampJokers(jokerCount)
	deck := make([]models.Card, 0, standardDeckSize+jokers)

	id := 1
	for _, suit := range models.Suits {
		for _, rank := range standardRanks {
			deck = append(deck, &models.StandardCard{ID: id, Suit: suit, Rank: rank})
			id++
		}
	}
	for j := 0; j < jokers; j++ {
		deck = append(deck, &models.JokerCard{ID: id})
		id++
	}

	shuffle(deck, rng)
	return deck
}

// shuffle is an in-place Fisher-Yates pass.
func shuffle(cards []models.Card, rng random.Random) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

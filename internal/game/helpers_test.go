package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/bussfix/internal/dependencies/random"
	"github.com/jason-s-yu/bussfix/internal/models"
	"github.com/stretchr/testify/require"
)

var testGameID = uuid.MustParse("00000000-0000-0000-0000-00000000b055")

// setupTestGame deals a seeded game for the named players.
func setupTestGame(t *testing.T, seed uint64, names ...string) *Session {
	t.Helper()
	seats := make([]Seat, len(names))
	for i, n := range names {
		seats[i] = Seat{ID: "p" + string(rune('1'+i)), Name: n}
	}
	s, err := NewSession(testGameID, seats, 2, random.NewSeeded(seed))
	require.NoError(t, err)
	return s
}

// cardFactory hands out ids that do not collide with a real deck.
type cardFactory struct{ next int }

func newCards() *cardFactory { return &cardFactory{next: 1000} }

func (f *cardFactory) std(r models.Rank) models.Card {
	f.next++
	return &models.StandardCard{ID: f.next, Suit: models.Spades, Rank: r}
}

func (f *cardFactory) many(r models.Rank, n int) []models.Card {
	out := make([]models.Card, n)
	for i := range out {
		out[i] = f.std(r)
	}
	return out
}

func (f *cardFactory) joker(declared ...models.Rank) *models.JokerCard {
	f.next++
	j := &models.JokerCard{ID: f.next}
	if len(declared) > 0 {
		j.Declare(declared[0])
	}
	return j
}

// stageTable replaces the pile with a single play and sets the threshold to
// its rank, as if that play had just been made.
func stageTable(s *Session, by string, cards ...models.Card) {
	s.Pile = []Play{{Cards: cards, By: by}}
	if len(cards) > 0 {
		r, _ := cards[len(cards)-1].EffectiveRank()
		s.Threshold = &r
	} else {
		s.Threshold = nil
	}
}

func rankPtr(r models.Rank) *models.Rank { return &r }

func drinksOf(s *Session) []int {
	out := make([]int, len(s.Players))
	for i, p := range s.Players {
		out[i] = p.Drinks
	}
	return out
}

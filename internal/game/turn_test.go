package game

import (
	"testing"

	"github.com/jason-s-yu/bussfix/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakePile(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	f := newCards()
	s.Pile = []Play{
		{Cards: f.many(models.Rank5, 2), By: "p2"},
		{Cards: []models.Card{f.std(models.Rank7)}, By: "p1"},
	}
	s.Threshold = rankPtr(models.Rank7)

	require.NoError(t, TakePile(s))

	assert.Len(t, s.Players[0].Hand, 6)
	assert.Empty(t, s.Pile)
	assert.Nil(t, s.Threshold)
	assert.Equal(t, 1, s.Players[0].Drinks)
	assert.Equal(t, 0, s.Turn)
	assert.Equal(t, "Ann picked up the pile and drank.", s.Messages[0])
}

func TestClearTableKeepsTurn(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	f := newCards()
	s.Turn = 1
	stageTable(s, "p1", f.many(models.Rank6, 4)...)

	require.NoError(t, ClearTable(s))

	assert.Empty(t, s.Pile)
	assert.Nil(t, s.Threshold)
	assert.Equal(t, 1, s.Turn)
	assert.Equal(t, []int{0, 0}, drinksOf(s))
	assert.Equal(t, "Pile cleared (finished drink).", s.Messages[0])
}

func TestPendingDecisionBlocksTableActions(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	s.Pending = &Decision{Kind: DecisionGiveSip, Actor: "p1"}

	assert.ErrorIs(t, TakePile(s), ErrDecisionPending)
	assert.ErrorIs(t, ClearTable(s), ErrDecisionPending)
	assert.ErrorIs(t, SetJokerRank(s, 1, models.Ace), ErrDecisionPending)
	assert.Equal(t, []string{"Game started!"}, s.Messages)
}

func TestAdvanceTurnSkipsPlayersWhoAreOut(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben", "Cid")
	s.Players[1].Out = true

	require.NoError(t, AdvanceTurn(s))
	assert.Equal(t, 2, s.Turn)

	require.NoError(t, AdvanceTurn(s))
	assert.Equal(t, 0, s.Turn)
}

func TestTopUpDrawsFromDeckEnd(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	ben := s.Players[1]
	ben.Hand = ben.Hand[:1]
	deckLen := len(s.Deck)
	last, secondLast := s.Deck[deckLen-1], s.Deck[deckLen-2]

	require.NoError(t, AdvanceTurn(s))

	assert.Equal(t, 1, s.Turn)
	require.Len(t, ben.Hand, 3)
	assert.Equal(t, last.CardID(), ben.Hand[1].CardID())
	assert.Equal(t, secondLast.CardID(), ben.Hand[2].CardID())
	assert.Len(t, s.Deck, deckLen-2)
}

func TestTopUpTakesFromRichestDonorWhenDeckIsEmpty(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben", "Cid")
	f := newCards()
	s.Deck = nil
	s.Players[0].Hand = f.many(models.Rank4, 3)
	s.Players[1].Hand = f.many(models.Rank5, 1)
	cid := f.many(models.Rank8, 5)
	s.Players[2].Hand = append([]models.Card{}, cid...)

	require.NoError(t, AdvanceTurn(s))

	assert.Equal(t, 1, s.Turn)
	require.Len(t, s.Players[1].Hand, 3)
	assert.Equal(t, cid[4].CardID(), s.Players[1].Hand[1].CardID())
	assert.Equal(t, cid[3].CardID(), s.Players[1].Hand[2].CardID())
	assert.Len(t, s.Players[2].Hand, 3)
	assert.Len(t, s.Players[0].Hand, 3)
	assert.False(t, s.Players[1].Out)
}

func TestTopUpEliminatesAndEndsGame(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	f := newCards()
	s.Deck = nil
	s.Players[0].Hand = f.many(models.Rank4, 3)
	s.Players[1].Hand = nil

	require.NoError(t, AdvanceTurn(s))

	assert.True(t, s.Players[1].Out)
	assert.Equal(t, []string{"p2"}, s.Winners)
	assert.Equal(t, StageEnded, s.Stage)
	assert.Equal(t, []string{"Ann is the last one left.", "Ben is out (won)!"}, s.Messages[:2])
}

func TestTopUpEliminationPassesTurnOn(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben", "Cid")
	f := newCards()
	s.Deck = nil
	s.Players[0].Hand = f.many(models.Rank4, 3)
	s.Players[1].Hand = f.many(models.Rank5, 1)
	s.Players[2].Hand = f.many(models.Rank6, 3)

	require.NoError(t, AdvanceTurn(s))

	assert.True(t, s.Players[1].Out)
	assert.Equal(t, []string{"p2"}, s.Winners)
	assert.Equal(t, StagePlaying, s.Stage)
	assert.Equal(t, 2, s.Turn)
	assert.Equal(t, "Ben is out (won)!", s.Messages[0])

	// a player who is out keeps whatever they held
	assert.Len(t, s.Players[1].Hand, 1)
}

func TestTopUpCanEliminateTwoInOnePass(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben", "Cid")
	f := newCards()
	s.Deck = nil
	s.Players[0].Hand = f.many(models.Rank4, 3)
	s.Players[1].Hand = nil
	s.Players[2].Hand = nil

	require.NoError(t, AdvanceTurn(s))

	assert.Equal(t, []string{"p2", "p3"}, s.Winners)
	assert.Equal(t, StageEnded, s.Stage)
	assert.Equal(t, "Ann is the last one left.", s.Messages[0])
}

func TestAdvanceTurnWithNobodyActiveIsAnInvariantViolation(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	for _, p := range s.Players {
		p.Out = true
	}

	err := AdvanceTurn(s)
	assert.ErrorIs(t, err, ErrInvariant)
	assert.Equal(t, StageEnded, s.Stage)
	assert.ErrorIs(t, AdvanceTurn(s), ErrGameNotPlaying)
}

func TestSetJokerRank(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	f := newCards()
	jk := f.joker()
	plain := f.std(models.Rank5)
	s.Players[0].Hand = append(s.Players[0].Hand, jk, plain)

	require.NoError(t, SetJokerRank(s, jk.ID, models.Queen))
	r, ok := jk.EffectiveRank()
	assert.True(t, ok)
	assert.Equal(t, models.Queen, r)

	assert.ErrorIs(t, SetJokerRank(s, plain.CardID(), models.Queen), ErrNotJoker)
	assert.ErrorIs(t, SetJokerRank(s, 99999, models.Queen), ErrCardNotInHand)
	var re *RuleError
	assert.ErrorAs(t, SetJokerRank(s, jk.ID, models.Rank("1")), &re)
}

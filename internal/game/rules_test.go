package game

import (
	"testing"

	"github.com/jason-s-yu/bussfix/internal/dependencies/mocks"
	"github.com/jason-s-yu/bussfix/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireRejected(t *testing.T, err error, reason string) {
	t.Helper()
	var re *RuleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, reason, re.Reason)
}

func TestValidatePlayShapes(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	f := newCards()

	requireRejected(t, ValidatePlay(s, nil), "select one or more cards")
	requireRejected(t, ValidatePlay(s, []models.Card{f.joker()}), "choose a rank for each joker")
	requireRejected(t, ValidatePlay(s, []models.Card{f.std(models.Rank5), f.std(models.Rank7)}),
		"play a set of the same rank, or a 69")
	requireRejected(t, ValidatePlay(s, []models.Card{f.std(models.Rank6), f.std(models.Rank9), f.std(models.Rank9)}),
		"play a set of the same rank, or a 69")

	// empty pile takes any legal shape
	assert.NoError(t, ValidatePlay(s, []models.Card{f.std(models.Rank3)}))
	assert.NoError(t, ValidatePlay(s, f.many(models.Rank8, 3)))
	assert.NoError(t, ValidatePlay(s, []models.Card{f.std(models.Rank5), f.joker(models.Rank5)}))
}

func TestValidatePlayAgainstThreshold(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	f := newCards()
	stageTable(s, "p2", f.std(models.King))

	requireRejected(t, ValidatePlay(s, []models.Card{f.std(models.Queen)}), "must beat or match K")
	requireRejected(t, ValidatePlay(s, f.many(models.Rank3, 2)), "must beat or match K")
	assert.NoError(t, ValidatePlay(s, []models.Card{f.std(models.King)}))
	assert.NoError(t, ValidatePlay(s, f.many(models.Ace, 2)))
	assert.NoError(t, ValidatePlay(s, []models.Card{f.joker(models.Ace)}))

	s.Threshold = nil
	assert.NoError(t, ValidatePlay(s, []models.Card{f.std(models.Rank3)}))
}

func TestValidatePlaySpecialsIgnoreThreshold(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	f := newCards()
	stageTable(s, "p2", f.many(models.Ace, 2)...)

	assert.NoError(t, ValidatePlay(s, []models.Card{f.std(models.Rank6), f.std(models.Rank9)}))
	assert.NoError(t, ValidatePlay(s, []models.Card{f.std(models.Rank9), f.std(models.Rank6)}))
	assert.NoError(t, ValidatePlay(s, []models.Card{f.joker(models.Rank6), f.std(models.Rank9)}))
	assert.NoError(t, ValidatePlay(s, []models.Card{f.std(models.Rank2)}))
	assert.NoError(t, ValidatePlay(s, []models.Card{f.std(models.Rank2), f.joker(models.Rank2)}))

	// with 2 on top only 2s, 69s and sneak-ins get through
	stageTable(s, "p2", f.std(models.Rank2))
	requireRejected(t, ValidatePlay(s, []models.Card{f.std(models.Ace)}), "must beat or match 2")
	assert.NoError(t, ValidatePlay(s, []models.Card{f.std(models.Rank2)}))
}

func TestValidatePlaySneakInCompletesFourOfAKind(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	f := newCards()
	// a 69 played nine-first leaves a 6 on top and 9 as the threshold
	s.Pile = []Play{{Cards: []models.Card{f.std(models.Rank9), f.std(models.Rank6)}, By: "p2"}}
	s.Threshold = rankPtr(models.Rank9)

	requireRejected(t, ValidatePlay(s, f.many(models.Rank6, 2)), "must beat or match 9")
	assert.NoError(t, ValidatePlay(s, f.many(models.Rank6, 3)))
	assert.NoError(t, ValidatePlay(s, []models.Card{f.std(models.Rank6), f.std(models.Rank6), f.joker(models.Rank6)}))
	requireRejected(t, ValidatePlay(s, f.many(models.Rank5, 3)), "must beat or match 9")
}

func TestValidatePlayDoesNotMutate(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	f := newCards()
	stageTable(s, "p2", f.std(models.King))
	before := FilterFor(s, "p1")

	_ = ValidatePlay(s, []models.Card{f.std(models.Rank4)})
	_ = ValidatePlay(s, []models.Card{f.std(models.Ace)})

	assert.Equal(t, before, FilterFor(s, "p1"))
}

func TestValidatePlayRefusesWhilePendingOrEnded(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	f := newCards()

	s.Pending = &Decision{Kind: DecisionGiveSip, Actor: "p1"}
	assert.ErrorIs(t, ValidatePlay(s, []models.Card{f.std(models.Ace)}), ErrDecisionPending)

	s.Pending = nil
	s.Stage = StageEnded
	assert.ErrorIs(t, ValidatePlay(s, []models.Card{f.std(models.Ace)}), ErrGameNotPlaying)
}

func TestApplyPlaySingleCardConservesCards(t *testing.T) {
	s := setupTestGame(t, 3, "Ann", "Ben")
	cur := s.Players[0]

	var pick models.Card
	for _, c := range cur.Hand {
		if !c.IsJoker() {
			pick = c
			break
		}
	}
	require.NotNil(t, pick)
	require.NoError(t, ValidatePlay(s, []models.Card{pick}))

	out := ApplyPlay(s, []models.Card{pick})

	assert.True(t, out.Resolved())
	assert.Len(t, cur.Hand, 2)
	require.Len(t, s.Pile, 1)
	assert.Equal(t, "p1", s.Pile[0].By)
	assert.Len(t, s.Pile[0].Cards, 1)
	assert.Len(t, s.Deck, 48)
	assert.Equal(t, 54, s.CardCount())
	r, _ := pick.EffectiveRank()
	assert.Equal(t, r, *s.Threshold)
	assert.Equal(t, "Ann played "+string(r)+".", s.Messages[0])
}

func TestApplyPlayAcceptsSliceOfHand(t *testing.T) {
	s := setupTestGame(t, 3, "Ann", "Ben")
	f := newCards()
	cur := s.Players[0]
	fiveA, fiveB, ace := f.std(models.Rank5), f.std(models.Rank5), f.std(models.Ace)
	cur.Hand = []models.Card{fiveA, fiveB, ace}
	total := s.CardCount()

	ApplyPlay(s, cur.Hand[:2])

	assert.Equal(t, []models.Card{ace}, cur.Hand)
	require.Len(t, s.Pile, 1)
	assert.Equal(t, []models.Card{fiveA, fiveB}, s.Pile[0].Cards)
	assert.Equal(t, total, s.CardCount())
}

func TestApplyPlayKingCompletingFourFiresBothSpecials(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	f := newCards()
	cur := s.Players[0]
	stageTable(s, "p2", f.many(models.King, 3)...)
	k := f.std(models.King)
	cur.Hand = append(cur.Hand, k)

	require.NoError(t, ValidatePlay(s, []models.Card{k}))
	out := ApplyPlay(s, []models.Card{k})

	require.False(t, out.Resolved())
	assert.Equal(t, DecisionGiveSip, out.Awaiting.Kind)
	assert.Equal(t, "p1", out.Awaiting.Actor)
	assert.Equal(t, out.Awaiting, s.Pending)
	assert.Equal(t, []int{2, 1}, drinksOf(s))
	assert.Equal(t, []string{
		"KK - Ann drinks and gives 1 sip.",
		"Four-of-a-kind (K) - everyone drinks!",
		"Ann played K.",
	}, s.Messages[:3])
}

func TestResolveGiveSip(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben", "Cid")
	f := newCards()
	stageTable(s, "p2", f.std(models.King))
	k := f.std(models.King)
	s.Players[0].Hand = append(s.Players[0].Hand, k)
	ApplyPlay(s, []models.Card{k})
	require.NotNil(t, s.Pending)

	s.Players[2].Out = true
	assert.ErrorIs(t, ResolveGiveSip(s, "p1"), ErrBadSipTarget)
	assert.ErrorIs(t, ResolveGiveSip(s, "p3"), ErrBadSipTarget)
	assert.ErrorIs(t, ResolveGiveSip(s, "nobody"), ErrBadSipTarget)
	_, err := ResolveSpinBottle(s)
	assert.ErrorIs(t, err, ErrNoDecision)

	require.NoError(t, ResolveGiveSip(s, "p2"))
	assert.Nil(t, s.Pending)
	assert.Equal(t, []int{1, 1, 0}, drinksOf(s))
	assert.Equal(t, "KK - Ann drinks and gives 1 sip to Ben.", s.Messages[0])
	assert.ErrorIs(t, ResolveGiveSip(s, "p2"), ErrNoDecision)
}

func TestApplyPlay69EveryoneDrinks(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben", "Cid")
	f := newCards()
	stageTable(s, "p3", f.std(models.Ace))
	s.Players[2].Out = true
	pair := []models.Card{f.std(models.Rank6), f.std(models.Rank9)}
	s.Players[0].Hand = append(s.Players[0].Hand, pair...)

	out := ApplyPlay(s, pair)

	assert.True(t, out.Resolved())
	assert.Equal(t, models.Rank9, *s.Threshold)
	assert.Equal(t, []int{1, 1, 0}, drinksOf(s))
	assert.Equal(t, "Ann played 69 - everyone drinks, next must beat 9.", s.Messages[0])
	assert.Len(t, s.Players[0].Hand, 3)
}

func TestApplyPlayResetSetsThresholdToTwo(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben")
	f := newCards()
	stageTable(s, "p2", f.std(models.Ace))
	twos := f.many(models.Rank2, 2)
	s.Players[0].Hand = append(s.Players[0].Hand, twos...)

	out := ApplyPlay(s, twos)

	assert.True(t, out.Resolved())
	assert.Equal(t, models.Rank2, *s.Threshold)
	assert.Equal(t, "Ann played a 2 - pile reset, next must beat 2.", s.Messages[0])
	assert.Equal(t, []int{0, 0}, drinksOf(s))
}

func TestApplyPlayJacksSixesQueens(t *testing.T) {
	t.Run("three jacks", func(t *testing.T) {
		s := setupTestGame(t, 1, "Ann", "Ben")
		f := newCards()
		stageTable(s, "p2", f.many(models.Jack, 2)...)
		j := f.std(models.Jack)
		s.Players[0].Hand = append(s.Players[0].Hand, j)

		assert.True(t, ApplyPlay(s, []models.Card{j}).Resolved())
		assert.Equal(t, "Trippelknull (3+ Jacks) - everyone drinks!", s.Messages[0])
		assert.Equal(t, []int{1, 1}, drinksOf(s))
	})

	t.Run("four sixes", func(t *testing.T) {
		s := setupTestGame(t, 1, "Ann", "Ben")
		f := newCards()
		stageTable(s, "p2", f.many(models.Rank6, 3)...)
		six := f.std(models.Rank6)
		s.Players[0].Hand = append(s.Players[0].Hand, six)

		assert.True(t, ApplyPlay(s, []models.Card{six}).Resolved())
		assert.Equal(t, []string{
			"Quadrupellsex (4+ sixes) - WATERFALL! Ann starts.",
			"Four-of-a-kind (6) - everyone drinks!",
		}, s.Messages[:2])
		assert.Equal(t, []int{1, 1}, drinksOf(s))
	})

	t.Run("two queens", func(t *testing.T) {
		s := setupTestGame(t, 1, "Ann", "Ben")
		f := newCards()
		stageTable(s, "p2", f.std(models.Queen))
		q := f.std(models.Queen)
		s.Players[0].Hand = append(s.Players[0].Hand, q)

		assert.True(t, ApplyPlay(s, []models.Card{q}).Resolved())
		assert.Equal(t, "Two or more Queens - Sax section drinks!", s.Messages[0])
		assert.Equal(t, []int{0, 0}, drinksOf(s))
	})

	t.Run("declared joker extends the top block", func(t *testing.T) {
		s := setupTestGame(t, 1, "Ann", "Ben")
		f := newCards()
		stageTable(s, "p2", f.std(models.Queen))
		jk := f.joker(models.Queen)
		s.Players[0].Hand = append(s.Players[0].Hand, jk)

		ApplyPlay(s, []models.Card{jk})
		assert.Equal(t, TopBlock{Rank: models.Queen, Count: 2}, PileTop(s.Pile))
		assert.Equal(t, "Ann played J(Q).", s.Messages[1])
	})
}

func TestApplyPlaySevensSpinTheBottle(t *testing.T) {
	s := setupTestGame(t, 1, "Ann", "Ben", "Cid")
	f := newCards()
	stageTable(s, "p3", f.many(models.Rank7, 2)...)
	seven := f.std(models.Rank7)
	s.Players[0].Hand = append(s.Players[0].Hand, seven)

	out := ApplyPlay(s, []models.Card{seven})
	require.False(t, out.Resolved())
	assert.Equal(t, DecisionSpinBottle, out.Awaiting.Kind)
	assert.Equal(t, "Three or more 7s - Spin the bottle!", s.Messages[0])

	s.SetRandom(mocks.NewMockRandom(1))
	target, err := ResolveSpinBottle(s)
	require.NoError(t, err)
	assert.Equal(t, "p2", target)
	assert.Equal(t, []int{0, 1, 0}, drinksOf(s))
	assert.Equal(t, "Bottle spun - Ben drinks 1 sip.", s.Messages[0])
	assert.Nil(t, s.Pending)
}

func TestPileTopSpansPlays(t *testing.T) {
	f := newCards()
	pile := []Play{
		{Cards: []models.Card{f.std(models.Rank5)}, By: "p1"},
		{Cards: []models.Card{f.std(models.King), f.std(models.King)}, By: "p2"},
		{Cards: []models.Card{f.joker(models.King)}, By: "p1"},
	}
	assert.Equal(t, TopBlock{Rank: models.King, Count: 3}, PileTop(pile))
	assert.Equal(t, TopBlock{}, PileTop(nil))
}

// internal/game/rules.go
package game

import (
	"fmt"
	"strings"

	"github.com/jason-s-yu/bussfix/internal/models"
)

// TopBlock is the longest run of one effective rank at the end of the pile.
type TopBlock struct {
	Rank  models.Rank `json:"rank,omitempty"`
	Count int         `json:"count"`
}

// PileTop computes the top block across the whole pile, not just the last play.
func PileTop(pile []Play) TopBlock {
	var flat []models.Card
	for _, pl := range pile {
		flat = append(flat, pl.Cards...)
	}
	if len(flat) == 0 {
		return TopBlock{}
	}
	top, _ := flat[len(flat)-1].EffectiveRank()
	count := 0
	for i := len(flat) - 1; i >= 0; i-- {
		r, _ := flat[i].EffectiveRank()
		if r != top {
			break
		}
		count++
	}
	return TopBlock{Rank: top, Count: count}
}

// shape describes a selection once every card has an effective rank.
type shape struct {
	ranks   []models.Rank
	same    bool
	is69    bool
	isReset bool
}

func classify(selected []models.Card) (shape, error) {
	if len(selected) == 0 {
		return shape{}, reject("select one or more cards")
	}
	sh := shape{ranks: make([]models.Rank, len(selected))}
	for i, c := range selected {
		r, ok := c.EffectiveRank()
		if !ok {
			return shape{}, reject("choose a rank for each joker")
		}
		sh.ranks[i] = r
	}

	sh.same = true
	sh.isReset = true
	for _, r := range sh.ranks {
		if r != sh.ranks[0] {
			sh.same = false
		}
		if r != models.Rank2 {
			sh.isReset = false
		}
	}
	sh.is69 = len(sh.ranks) == 2 &&
		((sh.ranks[0] == models.Rank6 && sh.ranks[1] == models.Rank9) ||
			(sh.ranks[0] == models.Rank9 && sh.ranks[1] == models.Rank6))
	return sh, nil
}

// ValidatePlay checks whether the current player may lay down selected. It
// returns nil or a *RuleError; the session is never modified.
func ValidatePlay(s *Session, selected []models.Card) error {
	if err := s.requirePlaying(); err != nil {
		return err
	}
	if s.Pending != nil {
		return ErrDecisionPending
	}

	sh, err := classify(selected)
	if err != nil {
		return err
	}
	if !sh.same && !sh.is69 {
		return reject("play a set of the same rank, or a 69")
	}

	if len(s.Pile) == 0 || sh.is69 || sh.isReset || s.Threshold == nil {
		return nil
	}

	played := sh.ranks[0]
	if models.RankValue(played) >= models.RankValue(*s.Threshold) {
		return nil
	}

	// A lower set may still sneak in when it completes four of a kind.
	top := PileTop(s.Pile)
	if top.Count > 0 && top.Rank == played && top.Count+len(selected) >= 4 {
		return nil
	}

	return reject(fmt.Sprintf("must beat or match %s", *s.Threshold))
}

// ApplyPlay moves selected from the current player's hand onto the pile and
// resolves every special the new top block triggers. The selection must have
// passed ValidatePlay. The turn is not advanced; callers do that once the
// outcome is resolved.
func ApplyPlay(s *Session, selected []models.Card) Outcome {
	cur := s.CurrentPlayer()

	// selected may share its backing array with the hand.
	played := make([]models.Card, len(selected))
	copy(played, selected)

	ids := make(map[int]struct{}, len(played))
	for _, c := range played {
		ids[c.CardID()] = struct{}{}
	}
	kept := make([]models.Card, 0, len(cur.Hand))
	for _, c := range cur.Hand {
		if _, ok := ids[c.CardID()]; !ok {
			kept = append(kept, c)
		}
	}
	cur.Hand = kept

	s.Pile = append(s.Pile, Play{Cards: played, By: cur.ID})

	sh, _ := classify(played)
	switch {
	case sh.is69:
		nine := models.Rank9
		s.Threshold = &nine
		s.logf("%s played 69 - everyone drinks, next must beat 9.", cur.Name)
		s.everyoneDrinks(1)
	case sh.isReset:
		two := models.Rank2
		s.Threshold = &two
		s.logf("%s played a 2 - pile reset, next must beat 2.", cur.Name)
	default:
		r := sh.ranks[0]
		s.Threshold = &r
		s.logf("%s played %s.", cur.Name, labelCards(played))
	}

	return resolveSpecials(s, cur)
}

func resolveSpecials(s *Session, cur *models.Player) Outcome {
	var out Outcome
	top := PileTop(s.Pile)

	if top.Count >= 4 {
		s.logf("Four-of-a-kind (%s) - everyone drinks!", top.Rank)
		s.everyoneDrinks(1)
	}
	if top.Rank == models.King && top.Count >= 2 {
		s.logf("KK - %s drinks and gives 1 sip.", cur.Name)
		cur.Drinks++
		out = s.await(DecisionGiveSip, cur.ID)
	}
	if top.Rank == models.Jack && top.Count >= 3 {
		s.logf("Trippelknull (3+ Jacks) - everyone drinks!")
		s.everyoneDrinks(1)
	}
	if top.Rank == models.Rank6 && top.Count >= 4 {
		s.logf("Quadrupellsex (4+ sixes) - WATERFALL! %s starts.", cur.Name)
	}
	if top.Rank == models.Rank7 && top.Count >= 3 {
		s.logf("Three or more 7s - Spin the bottle!")
		out = s.await(DecisionSpinBottle, cur.ID)
	}
	if top.Rank == models.Queen && top.Count >= 2 {
		s.logf("Two or more Queens - Sax section drinks!")
	}
	return out
}

func labelCards(cards []models.Card) string {
	labels := make([]string, len(cards))
	for i, c := range cards {
		labels[i] = c.Label()
	}
	return strings.Join(labels, " ")
}

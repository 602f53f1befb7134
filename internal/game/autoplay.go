package game

import "github.com/jason-s-yu/bussfix/internal/models"

// SuggestPlay picks a move for the current player the way a cautious human
// would: the lowest legal same-rank group, then a 69, then a lone joker
// declared as the lowest rank that gets through. It returns nil when the
// only option is picking up the pile. The session is not modified.
func SuggestPlay(s *Session) []models.CardRef {
	cur := s.CurrentPlayer()
	if cur == nil {
		return nil
	}

	groups := make(map[models.Rank][]models.Card)
	var jokers []*models.JokerCard
	for _, c := range cur.Hand {
		if r, ok := c.EffectiveRank(); ok {
			groups[r] = append(groups[r], c)
			continue
		}
		if j, ok := c.(*models.JokerCard); ok {
			jokers = append(jokers, j)
		}
	}

	for _, r := range models.RankOrder {
		if g := groups[r]; len(g) > 0 && ValidatePlay(s, g) == nil {
			return refsFor(g)
		}
	}

	if sixes, nines := groups[models.Rank6], groups[models.Rank9]; len(sixes) > 0 && len(nines) > 0 {
		pair := []models.Card{sixes[0], nines[0]}
		if ValidatePlay(s, pair) == nil {
			return refsFor(pair)
		}
	}

	for _, j := range jokers {
		for _, r := range models.RankOrder {
			probe := &models.JokerCard{ID: j.ID}
			probe.Declare(r)
			if ValidatePlay(s, []models.Card{probe}) == nil {
				return []models.CardRef{{ID: j.ID, DeclaredRank: string(r)}}
			}
		}
	}
	return nil
}

func refsFor(cards []models.Card) []models.CardRef {
	refs := make([]models.CardRef, len(cards))
	for i, c := range cards {
		refs[i] = models.CardRef{ID: c.CardID()}
		if r, ok := c.EffectiveRank(); ok && c.IsJoker() {
			refs[i].DeclaredRank = string(r)
		}
	}
	return refs
}

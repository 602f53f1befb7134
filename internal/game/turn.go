package game

import (
	"fmt"

	"github.com/jason-s-yu/bussfix/internal/models"
)

// SelectCards resolves card references against the current player's hand.
// A joker reference carrying a declared rank yields a declared copy of the
// joker, so a rejected play leaves the hand untouched.
func SelectCards(s *Session, refs []models.CardRef) ([]models.Card, error) {
	cur := s.CurrentPlayer()
	seen := make(map[int]struct{}, len(refs))
	selected := make([]models.Card, 0, len(refs))
	for _, ref := range refs {
		if _, dup := seen[ref.ID]; dup {
			return nil, ErrDuplicateCard
		}
		seen[ref.ID] = struct{}{}

		idx := cur.HandIndex(ref.ID)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %d", ErrCardNotInHand, ref.ID)
		}
		c := cur.Hand[idx]
		if j, ok := c.(*models.JokerCard); ok && ref.DeclaredRank != "" {
			r, err := models.ParseRank(ref.DeclaredRank)
			if err != nil {
				return nil, reject(err.Error())
			}
			declared := &models.JokerCard{ID: j.ID}
			declared.Declare(r)
			c = declared
		}
		selected = append(selected, c)
	}
	return selected, nil
}

// SetJokerRank declares the rank a joker in the current player's hand stands for.
func SetJokerRank(s *Session, cardID int, rank models.Rank) error {
	if err := s.requirePlaying(); err != nil {
		return err
	}
	if s.Pending != nil {
		return ErrDecisionPending
	}
	if models.RankValue(rank) < 0 {
		return reject(fmt.Sprintf("unknown rank %q", rank))
	}
	cur := s.CurrentPlayer()
	idx := cur.HandIndex(cardID)
	if idx < 0 {
		return ErrCardNotInHand
	}
	j, ok := cur.Hand[idx].(*models.JokerCard)
	if !ok {
		return ErrNotJoker
	}
	j.Declare(rank)
	return nil
}

// TakePile gives the whole pile to the current player, who drinks for it.
func TakePile(s *Session) error {
	if err := s.requirePlaying(); err != nil {
		return err
	}
	if s.Pending != nil {
		return ErrDecisionPending
	}
	cur := s.CurrentPlayer()
	cur.Hand = append(cur.Hand, s.FlatPile()...)
	s.Pile = nil
	s.Threshold = nil
	cur.Drinks++
	s.logf("%s picked up the pile and drank.", cur.Name)
	return nil
}

// ClearTable empties the pile without moving the turn, e.g. after a waterfall.
func ClearTable(s *Session) error {
	if err := s.requirePlaying(); err != nil {
		return err
	}
	if s.Pending != nil {
		return ErrDecisionPending
	}
	s.Pile = nil
	s.Threshold = nil
	s.logf("Pile cleared (finished drink).")
	return nil
}

// AdvanceTurn moves to the next player who is not out and tops their hand
// up. It probes each seat at most once.
func AdvanceTurn(s *Session) error {
	if err := s.requirePlaying(); err != nil {
		return err
	}
	if len(s.ActivePlayers()) == 0 {
		s.Stage = StageEnded
		return fmt.Errorf("%w: advancing with no active players", ErrInvariant)
	}

	n := len(s.Players)
	for i := 1; i <= n; i++ {
		s.Turn = (s.Turn + 1) % n
		if !s.Players[s.Turn].Out {
			break
		}
	}
	return topUpToThree(s)
}

// topUpToThree refills the current player's hand from the deck, then from
// the richest other active player. A player nobody can feed is out, which
// means they won.
func topUpToThree(s *Session) error {
	p := s.CurrentPlayer()
	if p.Out {
		return nil
	}
	for len(p.Hand) < HandSize {
		if c, ok := s.drawFromDeck(); ok {
			p.Hand = append(p.Hand, c)
			continue
		}

		donor := richestDonor(s, p)
		if donor != nil && len(donor.Hand) > HandSize {
			last := donor.Hand[len(donor.Hand)-1]
			donor.Hand = donor.Hand[:len(donor.Hand)-1]
			p.Hand = append(p.Hand, last)
			continue
		}

		p.Out = true
		s.Winners = append(s.Winners, p.ID)
		s.logf("%s is out (won)!", p.Name)

		remaining := s.ActivePlayers()
		if len(remaining) <= 1 {
			s.Stage = StageEnded
			if len(remaining) == 1 {
				s.logf("%s is the last one left.", remaining[0].Name)
			}
			return nil
		}
		return AdvanceTurn(s)
	}
	return nil
}

// richestDonor picks the active player other than p holding the most cards.
// Ties go to the earlier seat.
func richestDonor(s *Session, p *models.Player) *models.Player {
	var best *models.Player
	for _, o := range s.Players {
		if o == p || o.Out {
			continue
		}
		if best == nil || len(o.Hand) > len(best.Hand) {
			best = o
		}
	}
	return best
}

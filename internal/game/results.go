package game

import "github.com/jason-s-yu/bussfix/internal/models"

// Standings lists every player by finishing order: winners in the order they
// went out, then whoever is still holding cards in seat order.
func Standings(s *Session) []models.Standing {
	out := make([]models.Standing, 0, len(s.Players))
	for _, id := range s.Winners {
		if p := s.PlayerByID(id); p != nil {
			out = append(out, models.Standing{PlayerID: p.ID, Name: p.Name, Place: len(out) + 1, Drinks: p.Drinks})
		}
	}
	for _, p := range s.ActivePlayers() {
		out = append(out, models.Standing{PlayerID: p.ID, Name: p.Name, Place: len(out) + 1, Drinks: p.Drinks})
	}
	return out
}

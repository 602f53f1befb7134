package models

// Player is one seat in a game session.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Hand   []Card `json:"hand"`
	Drinks int    `json:"drinks"`
	// Out means the player emptied their hand with nobody able to feed them
	// and has won.
	Out bool `json:"out"`
}

// HandIndex returns the position of card id in the hand, or -1.
func (p *Player) HandIndex(id int) int {
	for i, c := range p.Hand {
		if c.CardID() == id {
			return i
		}
	}
	return -1
}

// Participant is a room member as seen by the roster.
type Participant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	IsHost    bool   `json:"host"`
}

package models

// Standing is one player's final placing. Place 1 went out first; the last
// player left takes the highest place.
type Standing struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Place    int    `json:"place"`
	Drinks   int    `json:"drinks"`
}

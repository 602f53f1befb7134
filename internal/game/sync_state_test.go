package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterForHidesOtherHands(t *testing.T) {
	s := setupTestGame(t, 5, "Ann", "Ben", "Cid")

	view := FilterFor(s, "p2")

	assert.Equal(t, "p2", view.You)
	assert.Equal(t, "p1", view.CurrentPlayerID)
	assert.Equal(t, len(s.Deck), view.DeckSize)
	require.Len(t, view.Players, 3)
	for _, pv := range view.Players {
		assert.Equal(t, 3, pv.HandSize)
		for i, c := range pv.Hand {
			if pv.ID == "p2" {
				assert.Equal(t, s.Players[1].Hand[i], c)
			} else {
				assert.Equal(t, HiddenCard{}, c)
			}
		}
	}

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	var decoded struct {
		Players []struct {
			ID   string            `json:"id"`
			Hand []json.RawMessage `json:"hand"`
		} `json:"players"`
		Deck json.RawMessage `json:"deck"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded.Deck)
	assert.JSONEq(t, `{}`, string(decoded.Players[0].Hand[0]))
	assert.Contains(t, string(decoded.Players[1].Hand[0]), `"id"`)
}

func TestFilterForCopiesState(t *testing.T) {
	s := setupTestGame(t, 5, "Ann", "Ben")
	view := FilterFor(s, "p1")

	s.logf("later")
	assert.Equal(t, []string{"Game started!"}, view.Messages)
}

package models

import "github.com/google/uuid"

// Action types written to the history feed besides the client actions.
const (
	ActionStartGame = "start_game"
	ActionEndGame   = "end_game"
)

// GameAction is one accepted room action as it travels from the server
// through the Redis queue into game_actions.
type GameAction struct {
	GameID      uuid.UUID              `json:"game_id"`
	ActionIndex int                    `json:"action_index"`
	ActorID     string                 `json:"actor_id"`
	ActionType  string                 `json:"action_type"`
	Payload     map[string]interface{} `json:"action_payload"`
	Timestamp   int64                  `json:"timestamp"`
}

package room

import "errors"

var (
	ErrRoomExists       = errors.New("room already exists")
	ErrRoomNotFound     = errors.New("room does not exist")
	ErrGameInProgress   = errors.New("game already started")
	ErrBadPasscode      = errors.New("wrong room passcode")
	ErrRoomFull         = errors.New("room is full")
	ErrNotHost          = errors.New("only the host can start or reset the game")
	ErrNotEnoughPlayers = errors.New("a game needs 2 to 6 players")
	ErrNotPlayerTurn    = errors.New("not your turn")
	ErrNoSession        = errors.New("no game state")
	ErrNotSeated        = errors.New("not seated in this room")
	ErrBadName          = errors.New("name and room id are required")
	ErrRegistryClosed   = errors.New("server is shutting down")
)

package game

import "errors"

var (
	ErrGameNotPlaying  = errors.New("game is not in progress")
	ErrDecisionPending = errors.New("a decision must be resolved first")
	ErrNoDecision      = errors.New("no decision is pending")
	ErrCardNotInHand   = errors.New("card is not in your hand")
	ErrDuplicateCard   = errors.New("card selected more than once")
	ErrNotJoker        = errors.New("card is not a joker")
	ErrBadSipTarget    = errors.New("sip target must be another active player")
	ErrPlayerCount     = errors.New("a game needs 2 to 6 players")

	// ErrInvariant marks a state the rules should never reach. Callers log it
	// as a defect.
	ErrInvariant = errors.New("game invariant violated")
)

// RuleError is a rejected play. Reason is shown to the player as is.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string {
	return e.Reason
}

func reject(reason string) error {
	return &RuleError{Reason: reason}
}

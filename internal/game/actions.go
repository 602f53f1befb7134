package game

import "github.com/jason-s-yu/bussfix/internal/models"

// The functions below are the full turn transitions both the room server and
// the local simulator drive. Each leaves the session untouched when it
// returns a validation error.

// PlayCards resolves refs against the current hand, validates and applies the
// play, and advances the turn unless a decision is now pending.
func PlayCards(s *Session, refs []models.CardRef) (Outcome, error) {
	if err := s.requirePlaying(); err != nil {
		return Outcome{}, err
	}
	if s.Pending != nil {
		return Outcome{}, ErrDecisionPending
	}
	selected, err := SelectCards(s, refs)
	if err != nil {
		return Outcome{}, err
	}
	if err := ValidatePlay(s, selected); err != nil {
		return Outcome{}, err
	}

	out := ApplyPlay(s, selected)
	if !out.Resolved() {
		return out, nil
	}
	return out, AdvanceTurn(s)
}

// Pickup takes the pile and passes the turn.
func Pickup(s *Session) error {
	if err := TakePile(s); err != nil {
		return err
	}
	return AdvanceTurn(s)
}

// GiveSip resolves a pending KK and passes the turn.
func GiveSip(s *Session, targetID string) error {
	if err := ResolveGiveSip(s, targetID); err != nil {
		return err
	}
	return AdvanceTurn(s)
}

// SpinBottle resolves a pending bottle spin and passes the turn.
func SpinBottle(s *Session) (string, error) {
	target, err := ResolveSpinBottle(s)
	if err != nil {
		return "", err
	}
	return target, AdvanceTurn(s)
}

package game

// DecisionKind names a choice the engine cannot make on its own.
type DecisionKind string

const (
	// DecisionGiveSip: the actor picks another active player to drink 1.
	DecisionGiveSip DecisionKind = "give_sip"
	// DecisionSpinBottle: a random active player drinks 1.
	DecisionSpinBottle DecisionKind = "spin_bottle"
)

// Decision is a choice the turn is waiting on.
type Decision struct {
	Kind  DecisionKind `json:"kind"`
	Actor string       `json:"actor"`
}

// Outcome is the result of ApplyPlay: either resolved, or awaiting a
// decision that has to be fed back through ResolveGiveSip or
// ResolveSpinBottle before the turn moves on.
type Outcome struct {
	Awaiting *Decision
}

// Resolved reports whether the turn can advance right away.
func (o Outcome) Resolved() bool {
	return o.Awaiting == nil
}

func (s *Session) await(kind DecisionKind, actor string) Outcome {
	d := &Decision{Kind: kind, Actor: actor}
	s.Pending = d
	return Outcome{Awaiting: d}
}

func (s *Session) pending(kind DecisionKind) error {
	if s.Pending == nil || s.Pending.Kind != kind {
		return ErrNoDecision
	}
	return nil
}

// ResolveGiveSip hands the KK sip to targetID.
func ResolveGiveSip(s *Session, targetID string) error {
	if err := s.pending(DecisionGiveSip); err != nil {
		return err
	}
	actor := s.PlayerByID(s.Pending.Actor)
	target := s.PlayerByID(targetID)
	if target == nil || target.Out || target == actor {
		return ErrBadSipTarget
	}

	target.Drinks++
	s.logf("KK - %s drinks and gives 1 sip to %s.", actor.Name, target.Name)
	s.Pending = nil
	return nil
}

// ResolveSpinBottle spins over the active players with the session's random
// source and returns the id of whoever drinks.
func ResolveSpinBottle(s *Session) (string, error) {
	if err := s.pending(DecisionSpinBottle); err != nil {
		return "", err
	}
	active := s.ActivePlayers()
	if len(active) == 0 {
		return "", ErrInvariant
	}

	target := active[s.rng.Intn(len(active))]
	target.Drinks++
	s.logf("Bottle spun - %s drinks 1 sip.", target.Name)
	s.Pending = nil
	return target.ID, nil
}

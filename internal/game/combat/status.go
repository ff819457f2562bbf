package combat

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/heardround/internal/game/fleet"
)

var (
	// ErrRoundNotActive is returned when resolution is requested outside
	// MissileOne, MissileTwo and RailGun.
	ErrRoundNotActive = errors.New("round is not active")
	// ErrCombatFinished is returned when advancing a finished encounter.
	ErrCombatFinished = errors.New("combat finished")
	// ErrNotReady is returned when leaving Pending before both fleets hold ships.
	ErrNotReady = errors.New("fleets not ready for combat")
	// ErrFleetLocked is returned when a fleet is imported after Pending.
	ErrFleetLocked = errors.New("fleet locked once combat has started")
	// ErrUnknownParticipant is returned for an identity that is neither side.
	ErrUnknownParticipant = errors.New("not a participant in this combat")
)

// Identity is a participant as known to the chat layer.
type Identity struct {
	ID          string
	DisplayName string
}

// String returns the display name.
func (i Identity) String() string { return i.DisplayName }

// Side selects the attacker or defender of an encounter.
type Side int

const (
	Attacker Side = iota
	Defender
)

// String returns "Attacker" or "Defender".
func (s Side) String() string {
	if s == Defender {
		return "Defender"
	}
	return "Attacker"
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Defender {
		return Attacker
	}
	return Defender
}

// Status is the full state of one encounter. It owns both fleets.
//
// A Status is not safe for concurrent use; callers serialize access per encounter.
type Status struct {
	Attacker      Identity
	Defender      Identity
	AttackerFleet fleet.List
	DefenderFleet fleet.List
	Round         Round
}

// NewStatus returns a Pending encounter with two empty fleets.
//
// Postcondition: Round == Pending; both fleets have five empty Waiting columns.
func NewStatus(attacker, defender Identity) *Status {
	return &Status{
		Attacker:      attacker,
		Defender:      defender,
		AttackerFleet: fleet.NewList(),
		DefenderFleet: fleet.NewList(),
		Round:         Pending,
	}
}

// SideOf returns which side id plays.
//
// Postcondition: Returns the side, or an error wrapping ErrUnknownParticipant.
func (s *Status) SideOf(id string) (Side, error) {
	switch id {
	case s.Attacker.ID:
		return Attacker, nil
	case s.Defender.ID:
		return Defender, nil
	}
	return Attacker, fmt.Errorf("%w: %q", ErrUnknownParticipant, id)
}

// Identity returns the participant playing side.
func (s *Status) Identity(side Side) Identity {
	if side == Defender {
		return s.Defender
	}
	return s.Attacker
}

// Fleet returns a pointer to side's fleet for in-place placement changes.
func (s *Status) Fleet(side Side) *fleet.List {
	if side == Defender {
		return &s.DefenderFleet
	}
	return &s.AttackerFleet
}

// ImportFleet replaces the fleet of participant id with one parsed from notation.
//
// Precondition: Round == Pending.
// Postcondition: On error the Status is unchanged. Errors wrap ErrFleetLocked,
// ErrUnknownParticipant or fleet.ErrInvalidToken.
func (s *Status) ImportFleet(id, notation string) error {
	if s.Round != Pending {
		return fmt.Errorf("%w (round %s)", ErrFleetLocked, s.Round)
	}
	side, err := s.SideOf(id)
	if err != nil {
		return err
	}
	l, err := fleet.ParseNotation(notation)
	if err != nil {
		return err
	}
	*s.Fleet(side) = l
	return nil
}

// ReadyForCombat reports whether both sides hold at least one ship in any column.
func (s *Status) ReadyForCombat() bool {
	return s.AttackerFleet.HasShips() && s.DefenderFleet.HasShips()
}

// Advance moves to the next round.
//
// Postcondition: Returns nil on success, an error wrapping ErrNotReady when
// leaving Pending with an empty fleet, or ErrCombatFinished when already Finished.
func (s *Status) Advance() error {
	switch s.Round {
	case Finished:
		return ErrCombatFinished
	case Pending:
		if !s.ReadyForCombat() {
			return ErrNotReady
		}
	}
	s.Round = s.Round.Next()
	return nil
}

// Retreat ends the encounter. No further rounds are resolved.
//
// Postcondition: Round == Finished.
func (s *Status) Retreat() {
	s.Round = Finished
}

// Finished reports whether the encounter is over.
func (s *Status) Finished() bool { return s.Round == Finished }

// Clone returns a deep copy of s.
func (s *Status) Clone() *Status {
	out := *s
	out.AttackerFleet = s.AttackerFleet.Clone()
	out.DefenderFleet = s.DefenderFleet.Clone()
	return &out
}

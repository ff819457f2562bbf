// Package combat runs a fleet-versus-fleet encounter through its rounds.
package combat

import "fmt"

// Round is the phase an encounter is in.
// Rounds only move forward: Pending, MissileOne, MissileTwo, RailGun, Finished.
type Round int

const (
	Pending Round = iota
	MissileOne
	MissileTwo
	RailGun
	Finished
)

// String returns a human-readable round label.
func (r Round) String() string {
	switch r {
	case Pending:
		return "pending"
	case MissileOne:
		return "missile one"
	case MissileTwo:
		return "missile two"
	case RailGun:
		return "rail gun"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("round(%d)", int(r))
	}
}

// Active reports whether damage is resolved in r.
func (r Round) Active() bool {
	return r == MissileOne || r == MissileTwo || r == RailGun
}

// Number returns the 1-based number of an active round, or 0.
func (r Round) Number() int {
	if !r.Active() {
		return 0
	}
	return int(r)
}

// Next returns the round after r. Finished is terminal.
func (r Round) Next() Round {
	if r >= Finished {
		return Finished
	}
	return r + 1
}

// IgnoresDefence reports whether all defence counts as 0 this round.
func (r Round) IgnoresDefence() bool { return r == RailGun }

// Announcement returns the line announced when r begins, or "" when r has none.
func (r Round) Announcement() string {
	switch r {
	case MissileOne:
		return "COMBAT HAS STARTED!"
	case MissileTwo:
		return "Second round of combat. If nobody retreats Railgun combat will start!"
	case RailGun:
		return "Final combat round. ALL DEFENCE WILL BE ZERO THIS ROUND"
	default:
		return ""
	}
}

// roundFromNumber maps a summary round number back to a Round.
func roundFromNumber(n int) (Round, bool) {
	r := Round(n)
	if !r.Active() {
		return Pending, false
	}
	return r, true
}

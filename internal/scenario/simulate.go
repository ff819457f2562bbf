package scenario

import (
	"fmt"

	"github.com/cory-johannsen/heardround/internal/game/combat"
	"github.com/cory-johannsen/heardround/internal/game/fleet"
)

// RoundLog is the resolution log of one simulated round.
type RoundLog struct {
	Round combat.Round
	Lines []string
}

// Result is the outcome of a simulation.
type Result struct {
	Rounds []RoundLog
	Final  *combat.Status
}

// Remaining returns the total current health left in side's fleet.
func (r Result) Remaining(side combat.Side) int {
	return remainingHealth(*r.Final.Fleet(side))
}

// Simulate resolves rounds from the scenario's starting round with every
// placement fixed, stopping after maxRounds rounds or when combat ends.
// A maxRounds of zero or less resolves every remaining round.
//
// Postcondition: The scenario itself is not modified.
func (s *Scenario) Simulate(maxRounds int) (Result, error) {
	status := s.Status()
	var res Result
	for !status.Finished() {
		if maxRounds > 0 && len(res.Rounds) >= maxRounds {
			break
		}
		round := status.Round
		lines, err := status.ResolveRound()
		if err != nil {
			return Result{}, fmt.Errorf("resolving %s: %w", round, err)
		}
		res.Rounds = append(res.Rounds, RoundLog{Round: round, Lines: lines})
		if err := status.Advance(); err != nil {
			return Result{}, fmt.Errorf("advancing from %s: %w", round, err)
		}
	}
	res.Final = status
	return res, nil
}

func remainingHealth(l fleet.List) int {
	total := 0
	for _, c := range l.Columns {
		for _, sl := range c.Slots {
			total += sl.Ship.CurrentHealth
		}
	}
	return total
}

package combat

import (
	"fmt"

	"github.com/cory-johannsen/heardround/internal/game/fleet"
)

// lane is one side's fighting strength at a placement for the current round.
type lane struct {
	column  fleet.Column
	present bool
	attack  int
	defence int
}

// carryOver is damage that passed through an emptied column and waits for
// the second phase.
type carryOver struct {
	side   Side
	from   fleet.Placement
	amount int
	dealer Identity
}

// ResolveRound fights the current round across Left, Middle and Right, in
// that order, and commits the damage to both fleets.
//
// Both exchanges at a placement use the strength the columns had before any
// damage this round. Carry-over is held until all three placements have
// fought, then split across the adjacent non-empty columns of the fleet that
// took it. Carry-over left after that second phase is lost.
//
// Precondition: Round is MissileOne, MissileTwo or RailGun.
// Postcondition: Returns the round log, or an error wrapping ErrRoundNotActive
// with the Status unchanged. Round is not advanced.
func (s *Status) ResolveRound() ([]string, error) {
	if !s.Round.Active() {
		return nil, fmt.Errorf("%w (round %s)", ErrRoundNotActive, s.Round)
	}

	log := []string{fmt.Sprintf("Resolving combat round %d", s.Round.Number())}
	var pending []carryOver

	for _, p := range fleet.ActivePlacements() {
		atk := s.lane(Attacker, p)
		def := s.lane(Defender, p)
		log = append(log,
			fmt.Sprintf("Processing %s column", p),
			fmt.Sprintf("Attacker %s: attack %d, defence %d", s.Attacker, atk.attack, atk.defence),
			fmt.Sprintf("Defender %s: attack %d, defence %d", s.Defender, def.attack, def.defence),
		)

		toDefender := exchange(atk.attack, def.defence)
		toAttacker := exchange(def.attack, atk.defence)

		if c, ok := s.strike(Defender, p, toDefender, &log); ok {
			pending = append(pending, c)
		}
		if c, ok := s.strike(Attacker, p, toAttacker, &log); ok {
			pending = append(pending, c)
		}
	}

	for _, c := range pending {
		s.applyCarryOver(c, &log)
	}
	return log, nil
}

// exchange returns the damage attack deals through defence.
func exchange(attack, defence int) int {
	if attack > defence {
		return attack - defence
	}
	return 0
}

func (s *Status) lane(side Side, p fleet.Placement) lane {
	f := s.Fleet(side)
	c, ok := f.At(p)
	if !ok {
		return lane{}
	}
	l := lane{
		column:  c,
		present: true,
		attack:  c.Attack(f.PatrolMode),
		defence: c.Defence(f.PatrolMode),
	}
	if s.Round.IgnoresDefence() {
		l.defence = 0
	}
	return l
}

// strike deals amount to side's column at p and reports any carry-over it produced.
// A lane with no column absorbs nothing, so all of amount carries over.
func (s *Status) strike(side Side, p fleet.Placement, amount int, log *[]string) (carryOver, bool) {
	if amount <= 0 {
		return carryOver{}, false
	}
	dealer := s.Identity(side.Opponent())
	target := s.Identity(side)
	*log = append(*log, fmt.Sprintf("%s deals %d damage to %s's %s column", dealer, amount, target, p))

	f := s.Fleet(side)
	c, ok := f.At(p)
	if !ok {
		return carryOver{side: side, from: p, amount: amount, dealer: dealer}, true
	}
	after, carry, events := c.TakeDamage(amount)
	for _, ev := range events {
		*log = append(*log, ev.String())
	}
	// The column came from f, so its number is present.
	_ = f.ReplaceColumn(after)

	if carry == 0 {
		return carryOver{}, false
	}
	return carryOver{side: side, from: p, amount: carry, dealer: dealer}, true
}

// carryTargets returns the placements adjacent to p whose column still holds ships.
func (s *Status) carryTargets(side Side, p fleet.Placement) []fleet.Placement {
	f := s.Fleet(side)
	var out []fleet.Placement
	for _, adj := range p.Adjacent() {
		if c, ok := f.At(adj); ok && !c.Empty() {
			out = append(out, adj)
		}
	}
	return out
}

// applyCarryOver splits c evenly across its targets; the remainder goes to
// the first target in lane order.
func (s *Status) applyCarryOver(c carryOver, log *[]string) {
	targets := s.carryTargets(c.side, c.from)
	victim := s.Identity(c.side)
	if len(targets) == 0 {
		*log = append(*log, fmt.Sprintf("%d carry-over damage from %s dissipates: no adjacent column of %s's to take it",
			c.amount, c.dealer, victim))
		return
	}

	share := c.amount / len(targets)
	extra := c.amount % len(targets)
	f := s.Fleet(c.side)
	for i, p := range targets {
		amount := share
		if i == 0 {
			amount += extra
		}
		if amount == 0 {
			continue
		}
		*log = append(*log, fmt.Sprintf("%d carry-over damage from %s spills from %s's %s column to the %s column",
			amount, c.dealer, victim, c.from, p))

		col, _ := f.At(p)
		after, leftover, events := col.TakeDamage(amount)
		for _, ev := range events {
			*log = append(*log, ev.String())
		}
		_ = f.ReplaceColumn(after)
		if leftover > 0 {
			*log = append(*log, fmt.Sprintf("%d carry-over damage from %s dissipates", leftover, c.dealer))
		}
	}
}

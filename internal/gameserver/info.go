package gameserver

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/heardround/internal/game/fleet"
	"github.com/cory-johannsen/heardround/internal/game/ship"
)

// ShipCatalogue renders every ship kind with its notation code and stats.
func ShipCatalogue() string {
	var b strings.Builder
	b.WriteString("```\n")
	fmt.Fprintf(&b, "%-4s %-24s %6s %6s %7s\n", "Code", "Ship", "Health", "Attack", "Defence")
	for _, k := range ship.Kinds() {
		fmt.Fprintf(&b, "%-4s %-24s %6d %6d %7d\n", k.Code(), k.Name(), k.MaxHealth(), k.Attack(), k.Defence())
	}
	b.WriteString("```")
	return b.String()
}

// DescribeFleet parses notation and renders the fleet it describes, so a
// player can check a fleet list before combat.
//
// Postcondition: Returns the rendering, or an error wrapping
// fleet.ErrInvalidToken or ErrEmptyFleet.
func DescribeFleet(notation string) (string, error) {
	l, err := fleet.ParseNotation(notation)
	if err != nil {
		return "", err
	}
	if !l.HasShips() {
		return "", ErrEmptyFleet
	}

	var lines []string
	if l.PatrolMode {
		lines = append(lines, "PATROL MODE")
	}
	for _, c := range l.Columns {
		if c.Empty() {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s\nAttack %d, defence %d",
			c.String(), c.Attack(l.PatrolMode), c.Defence(l.PatrolMode)))
	}
	return strings.Join(lines, "\n"), nil
}

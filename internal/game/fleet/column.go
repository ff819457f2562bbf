package fleet

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cory-johannsen/heardround/internal/game/ship"
)

// ErrMalformedColumnText is returned when column display text cannot be parsed.
var ErrMalformedColumnText = errors.New("malformed column text")

var columnHeaderPattern = regexp.MustCompile(`^Fleet column (-?\d+)$`)

// Slot is a ship and its insertion position within a column.
// Lower positions are at the front of the line and take damage first.
type Slot struct {
	Ship     ship.Ship
	Position int
}

// Column is one numbered group of ships with a placement.
//
// Invariant: Slots are sorted by Position ascending; equal positions keep
// insertion order.
type Column struct {
	Number    int
	Placement Placement
	Slots     []Slot
}

// NewColumn returns an empty Waiting column.
func NewColumn(number int) Column {
	return Column{Number: number, Placement: Waiting}
}

// AddShip inserts s at position, keeping Slots ordered.
//
// Postcondition: Slots remain sorted by Position; ties keep insertion order.
func (c *Column) AddShip(s ship.Ship, position int) {
	c.Slots = append(c.Slots, Slot{Ship: s, Position: position})
	sort.SliceStable(c.Slots, func(i, j int) bool {
		return c.Slots[i].Position < c.Slots[j].Position
	})
}

// Empty reports whether the column has no ships.
func (c Column) Empty() bool { return len(c.Slots) == 0 }

// Ships returns the ships in column order.
func (c Column) Ships() []ship.Ship {
	out := make([]ship.Ship, len(c.Slots))
	for i, sl := range c.Slots {
		out[i] = sl.Ship
	}
	return out
}

// Attack returns the summed kind attack, floor-halved in patrol mode.
func (c Column) Attack(patrol bool) int {
	total := 0
	for _, sl := range c.Slots {
		total += sl.Ship.Attack()
	}
	return halveIf(total, patrol)
}

// Defence returns the summed kind defence, floor-halved in patrol mode.
func (c Column) Defence(patrol bool) int {
	total := 0
	for _, sl := range c.Slots {
		total += sl.Ship.Defence()
	}
	return halveIf(total, patrol)
}

// EffectiveAttack is Column.Attack as a free function.
func EffectiveAttack(c Column, patrol bool) int { return c.Attack(patrol) }

// EffectiveDefence is Column.Defence as a free function.
func EffectiveDefence(c Column, patrol bool) int { return c.Defence(patrol) }

func halveIf(v int, patrol bool) int {
	if patrol {
		return v / 2
	}
	return v
}

// DamageOutcome distinguishes a destroyed ship from a damaged one.
type DamageOutcome int

const (
	Damaged DamageOutcome = iota
	Destroyed
)

// DamageEvent records damage landing on one ship.
type DamageEvent struct {
	Outcome DamageOutcome
	// Ship is the ship as it was before the hit.
	Ship ship.Ship
	// Amount is the damage absorbed by the ship.
	Amount int
}

// String renders the event as a log line.
func (e DamageEvent) String() string {
	if e.Outcome == Destroyed {
		return fmt.Sprintf("💥 %s is destroyed!", e.Ship)
	}
	return fmt.Sprintf("%s takes %d damage", e.Ship, e.Amount)
}

// TakeDamage applies amount to the ships front to back and returns the
// resulting column, the leftover damage, and one event per ship hit.
// The receiver is not modified.
//
// Precondition: amount >= 0.
// Postcondition: carryOver > 0 only if the returned column is empty.
func (c Column) TakeDamage(amount int) (Column, int, []DamageEvent) {
	out := c
	out.Slots = make([]Slot, len(c.Slots))
	copy(out.Slots, c.Slots)

	var events []DamageEvent
	for amount > 0 && len(out.Slots) > 0 {
		front := out.Slots[0]
		if amount >= front.Ship.CurrentHealth {
			absorbed := max(front.Ship.CurrentHealth, 0)
			amount -= absorbed
			events = append(events, DamageEvent{Outcome: Destroyed, Ship: front.Ship, Amount: absorbed})
			out.Slots = out.Slots[1:]
			continue
		}
		events = append(events, DamageEvent{Outcome: Damaged, Ship: front.Ship, Amount: amount})
		out.Slots[0].Ship.CurrentHealth -= amount
		amount = 0
	}
	if len(out.Slots) == 0 {
		out.Slots = nil
	}
	return out, amount, events
}

// String renders "Fleet column <n>\nShips: `a`, `b`". The Ships line is
// omitted when the column is empty.
func (c Column) String() string {
	header := fmt.Sprintf("Fleet column %d", c.Number)
	if c.Empty() {
		return header
	}
	return header + "\nShips: " + c.ShipList()
}

// ShipList renders the backtick-wrapped, comma-joined ship texts.
func (c Column) ShipList() string {
	parts := make([]string, len(c.Slots))
	for i, sl := range c.Slots {
		parts[i] = "`" + sl.Ship.String() + "`"
	}
	return strings.Join(parts, ", ")
}

// ParseColumn reads the String form back into a Waiting column.
// Ships are given positions 0..n-1 in text order. A missing or empty Ships
// line yields an empty column.
//
// Postcondition: Returns the Column, or an error wrapping
// ErrMalformedColumnText (or ship.ErrMalformedText for a bad ship).
func ParseColumn(text string) (Column, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > 2 {
		return Column{}, fmt.Errorf("%w: %q", ErrMalformedColumnText, text)
	}
	m := columnHeaderPattern.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return Column{}, fmt.Errorf("%w: header %q", ErrMalformedColumnText, lines[0])
	}
	number, err := strconv.Atoi(m[1])
	if err != nil {
		return Column{}, fmt.Errorf("%w: header %q: %w", ErrMalformedColumnText, lines[0], err)
	}
	col := NewColumn(number)
	if len(lines) == 1 {
		return col, nil
	}

	body, ok := strings.CutPrefix(strings.TrimSpace(lines[1]), "Ships:")
	if !ok {
		return Column{}, fmt.Errorf("%w: ships line %q", ErrMalformedColumnText, lines[1])
	}
	position := 0
	for _, part := range strings.Split(body, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, err := ship.Parse(part)
		if err != nil {
			return Column{}, err
		}
		col.Slots = append(col.Slots, Slot{Ship: s, Position: position})
		position++
	}
	return col, nil
}

// Equal reports structural equality: number, placement, and the ship
// sequence in order. Positions are not compared.
func (c Column) Equal(other Column) bool {
	if c.Number != other.Number || c.Placement != other.Placement {
		return false
	}
	if len(c.Slots) != len(other.Slots) {
		return false
	}
	for i := range c.Slots {
		if c.Slots[i].Ship != other.Slots[i].Ship {
			return false
		}
	}
	return true
}

// clone returns a deep copy of c.
func (c Column) clone() Column {
	out := c
	if c.Slots != nil {
		out.Slots = make([]Slot, len(c.Slots))
		copy(out.Slots, c.Slots)
	}
	return out
}

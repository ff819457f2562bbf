// Package fleet models a side's five fleet columns, their combat placement,
// and the compact fleet notation used to import them.
package fleet

import (
	"errors"
	"fmt"
)

// ErrInvalidPlacement is returned when a placement code cannot be parsed.
var ErrInvalidPlacement = errors.New("invalid placement")

// Placement is where a column sits: in reserve or in one of the three lanes.
type Placement int

const (
	Waiting Placement = iota
	Left
	Middle
	Right
)

// ActivePlacements returns the combat lanes in resolution order.
func ActivePlacements() []Placement {
	return []Placement{Left, Middle, Right}
}

// Active reports whether p is a combat lane.
func (p Placement) Active() bool {
	return p == Left || p == Middle || p == Right
}

// Adjacent returns the lanes next to p. Waiting has no neighbours.
func (p Placement) Adjacent() []Placement {
	switch p {
	case Left:
		return []Placement{Middle}
	case Middle:
		return []Placement{Left, Right}
	case Right:
		return []Placement{Middle}
	default:
		return nil
	}
}

// String returns the display label.
func (p Placement) String() string {
	switch p {
	case Waiting:
		return "Waiting"
	case Left:
		return "Left"
	case Middle:
		return "Middle"
	case Right:
		return "Right"
	default:
		return fmt.Sprintf("Placement(%d)", int(p))
	}
}

// Letter returns the single-letter placement code.
func (p Placement) Letter() byte {
	switch p {
	case Left:
		return 'L'
	case Middle:
		return 'M'
	case Right:
		return 'R'
	default:
		return 'W'
	}
}

// PlacementFromLetter parses a single-letter placement code.
//
// Postcondition: Returns the placement, or an error wrapping ErrInvalidPlacement.
func PlacementFromLetter(b byte) (Placement, error) {
	switch b {
	case 'W', 'w':
		return Waiting, nil
	case 'L', 'l':
		return Left, nil
	case 'M', 'm':
		return Middle, nil
	case 'R', 'r':
		return Right, nil
	default:
		return Waiting, fmt.Errorf("%w: %q", ErrInvalidPlacement, string(b))
	}
}

// ParsePlacement parses a placement name such as "left" or "Middle".
//
// Postcondition: Returns the placement, or an error wrapping ErrInvalidPlacement.
func ParsePlacement(s string) (Placement, error) {
	switch s {
	case "waiting", "Waiting", "W", "w":
		return Waiting, nil
	case "left", "Left", "L", "l":
		return Left, nil
	case "middle", "Middle", "centre", "center", "M", "m", "C", "c":
		return Middle, nil
	case "right", "Right", "R", "r":
		return Right, nil
	}
	return Waiting, fmt.Errorf("%w: %q", ErrInvalidPlacement, s)
}

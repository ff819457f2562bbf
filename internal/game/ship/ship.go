package ship

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedText is returned when ship display text cannot be parsed.
var ErrMalformedText = errors.New("malformed ship text")

var shipTextPattern = regexp.MustCompile(`^(.+) \((\d+)/\d+\)$`)

// Ship is a catalogue kind with its current health.
// Equality is structural; two Ships compare equal with ==.
type Ship struct {
	Kind          Kind
	CurrentHealth int
}

// New returns a Ship of kind k at full health.
func New(k Kind) Ship {
	return Ship{Kind: k, CurrentHealth: k.MaxHealth()}
}

// MaxHealth returns the kind's max health.
func (s Ship) MaxHealth() int { return s.Kind.MaxHealth() }

// Attack returns the kind's attack.
func (s Ship) Attack() int { return s.Kind.Attack() }

// Defence returns the kind's defence.
func (s Ship) Defence() int { return s.Kind.Defence() }

// Destroyed reports whether the ship has no health left.
func (s Ship) Destroyed() bool { return s.CurrentHealth <= 0 }

// String renders "<Name> (<current>/<max>)".
func (s Ship) String() string {
	return fmt.Sprintf("%s (%d/%d)", s.Kind.Name(), s.CurrentHealth, s.Kind.MaxHealth())
}

// Parse reads the String form back into a Ship. Surrounding whitespace and
// backticks are stripped.
//
// Postcondition: Returns the Ship, or an error wrapping ErrMalformedText
// (which also wraps ErrUnknownKind for an unknown name).
func Parse(text string) (Ship, error) {
	trimmed := strings.Trim(strings.TrimSpace(text), "`")
	m := shipTextPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Ship{}, fmt.Errorf("%w: %q", ErrMalformedText, text)
	}
	k, err := KindByName(m[1])
	if err != nil {
		return Ship{}, fmt.Errorf("%w: %q: %w", ErrMalformedText, text, err)
	}
	health, err := strconv.Atoi(m[2])
	if err != nil {
		return Ship{}, fmt.Errorf("%w: %q: health: %w", ErrMalformedText, text, err)
	}
	return Ship{Kind: k, CurrentHealth: health}, nil
}

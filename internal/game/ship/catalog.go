// Package ship holds the closed ship catalogue and the Ship value type.
package ship

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a name or short code is not in the catalogue.
var ErrUnknownKind = errors.New("unknown ship kind")

// Kind identifies one of the sixteen catalogue ship kinds.
type Kind int

const (
	Battleship Kind = iota
	Battlecruiser
	HeavyCruiser
	LightCruiser
	Frigate
	Destroyer
	Corvette
	SystemDefenceBoat
	FACSquadron
	ArmedMerchant
	StealthAttackShip
	PDCruiser
	AssaultLandingShip
	FastReplenishmentShip
	PatrolShip
	SurveyShip

	kindCount
)

// stats is one row of the catalogue.
type stats struct {
	name      string
	code      string
	maxHealth int
	attack    int
	defence   int
}

var catalogue = [kindCount]stats{
	Battleship:            {"Battleship", "BS", 30, 25, 20},
	Battlecruiser:         {"Battlecruiser", "BC", 20, 25, 15},
	HeavyCruiser:          {"Heavy Cruiser", "HC", 20, 15, 12},
	LightCruiser:          {"Light Cruiser", "LC", 15, 10, 8},
	Frigate:               {"Frigate", "F", 10, 8, 6},
	Destroyer:             {"Destroyer", "D", 8, 6, 4},
	Corvette:              {"Corvette", "C", 6, 4, 4},
	SystemDefenceBoat:     {"System Defence Boat", "SDB", 6, 4, 4},
	FACSquadron:           {"FAC Squadron", "FAC", 2, 4, 1},
	ArmedMerchant:         {"Armed Merchant", "AM", 3, 3, 2},
	StealthAttackShip:     {"Stealth Attack Ship", "SAS", 3, 3, 1},
	PDCruiser:             {"PD Cruiser", "PDC", 15, 2, 10},
	AssaultLandingShip:    {"Assault Landing Ship", "ALS", 6, 2, 4},
	FastReplenishmentShip: {"Fast Replenishment Ship", "FRS", 5, 1, 3},
	PatrolShip:            {"Patrol Ship", "PS", 2, 1, 1},
	SurveyShip:            {"Survey Ship", "SS", 2, 0, 0},
}

// byName and byCode are built once at init and never mutated.
var (
	byName = make(map[string]Kind, kindCount)
	byCode = make(map[string]Kind, kindCount)
)

func init() {
	for k := Kind(0); k < kindCount; k++ {
		s := catalogue[k]
		if _, dup := byCode[s.code]; dup {
			panic(fmt.Sprintf("ship: duplicate short code %q", s.code))
		}
		byName[s.name] = k
		byCode[s.code] = k
	}
}

// Kinds returns every catalogue kind in declaration order.
//
// Postcondition: Returns a fresh slice of length 16.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// KindByName looks up a kind by its display name, e.g. "Light Cruiser".
//
// Postcondition: Returns the kind, or an error wrapping ErrUnknownKind.
func KindByName(name string) (Kind, error) {
	k, ok := byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: name %q", ErrUnknownKind, name)
	}
	return k, nil
}

// KindByCode looks up a kind by its notation short code, e.g. "LC".
//
// Postcondition: Returns the kind, or an error wrapping ErrUnknownKind.
func KindByCode(code string) (Kind, error) {
	k, ok := byCode[code]
	if !ok {
		return 0, fmt.Errorf("%w: code %q", ErrUnknownKind, code)
	}
	return k, nil
}

// Valid reports whether k is a catalogue kind.
func (k Kind) Valid() bool { return k >= 0 && k < kindCount }

// Name returns the human-readable kind name.
func (k Kind) Name() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return catalogue[k].name
}

// String implements fmt.Stringer.
func (k Kind) String() string { return k.Name() }

// Code returns the short notation code (1-3 letters).
func (k Kind) Code() string {
	if !k.Valid() {
		return ""
	}
	return catalogue[k].code
}

// MaxHealth returns the kind's full health.
func (k Kind) MaxHealth() int {
	if !k.Valid() {
		return 0
	}
	return catalogue[k].maxHealth
}

// Attack returns the kind's base attack.
func (k Kind) Attack() int {
	if !k.Valid() {
		return 0
	}
	return catalogue[k].attack
}

// Defence returns the kind's base defence.
func (k Kind) Defence() int {
	if !k.Valid() {
		return 0
	}
	return catalogue[k].defence
}

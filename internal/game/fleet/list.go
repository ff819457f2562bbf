package fleet

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cory-johannsen/heardround/internal/game/ship"
)

// ColumnCount is the fixed number of columns in every fleet.
const ColumnCount = 5

// PatrolMarker prefixes the notation of a fleet in patrol mode.
const PatrolMarker = "<P>"

var (
	// ErrInvalidToken is returned when a notation token does not match
	// <code><health>[<col>,<pos>] or names an unknown ship code.
	ErrInvalidToken = errors.New("invalid fleet token")
	// ErrColumnNotFound is returned when no column has the requested number.
	ErrColumnNotFound = errors.New("column not found")
	// ErrNoWaitingFleet signals that no waiting column holds any ships, so
	// there is nothing to offer for a swap.
	ErrNoWaitingFleet = errors.New("no waiting fleet")
)

var tokenPattern = regexp.MustCompile(`^([A-Za-z]+)(\d+)\[(\d+),(\d+)\]$`)

// List is one side's fleet: exactly five columns plus the patrol flag.
//
// Invariant: Columns[i].Number is a permutation of 1..5.
type List struct {
	Columns    [ColumnCount]Column
	PatrolMode bool
}

// NewList returns an empty fleet with columns 1..5, all Waiting.
func NewList() List {
	var l List
	for i := range l.Columns {
		l.Columns[i] = NewColumn(i + 1)
	}
	return l
}

// ParseNotation builds a fleet from compact notation, e.g.
// "<P>F10[1,0]|LC15[2,0]". The empty string is an empty fleet.
//
// Postcondition: Returns the List, or an error wrapping ErrInvalidToken that
// names the offending token.
func ParseNotation(text string) (List, error) {
	l := NewList()
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, PatrolMarker); ok {
		l.PatrolMode = true
		text = rest
	}

	for _, token := range strings.Split(text, "|") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		s, col, pos, err := parseToken(token)
		if err != nil {
			return List{}, err
		}
		l.Columns[col-1].AddShip(s, pos)
	}
	return l, nil
}

func parseToken(token string) (ship.Ship, int, int, error) {
	m := tokenPattern.FindStringSubmatch(token)
	if m == nil {
		return ship.Ship{}, 0, 0, fmt.Errorf("%w: `%s`", ErrInvalidToken, token)
	}
	kind, err := ship.KindByCode(m[1])
	if err != nil {
		return ship.Ship{}, 0, 0, fmt.Errorf("%w: `%s`: %w", ErrInvalidToken, token, err)
	}
	health, err := strconv.Atoi(m[2])
	if err != nil {
		return ship.Ship{}, 0, 0, fmt.Errorf("%w: `%s`: %w", ErrInvalidToken, token, err)
	}
	col, err := strconv.Atoi(m[3])
	if err != nil || col < 1 || col > ColumnCount {
		return ship.Ship{}, 0, 0, fmt.Errorf("%w: `%s`: column must be 1-%d", ErrInvalidToken, token, ColumnCount)
	}
	pos, err := strconv.Atoi(m[4])
	if err != nil {
		return ship.Ship{}, 0, 0, fmt.Errorf("%w: `%s`: %w", ErrInvalidToken, token, err)
	}
	return ship.Ship{Kind: kind, CurrentHealth: health}, col, pos, nil
}

// Notation serializes the fleet in compact notation. Placements are not
// part of the notation; see Placements.
//
// Postcondition: ParseNotation(l.Notation()) equals l with all columns Waiting.
func (l List) Notation() string {
	var tokens []string
	for _, c := range l.Columns {
		for _, sl := range c.Slots {
			tokens = append(tokens, fmt.Sprintf("%s%d[%d,%d]", sl.Ship.Kind.Code(), sl.Ship.CurrentHealth, c.Number, sl.Position))
		}
	}
	out := strings.Join(tokens, "|")
	if l.PatrolMode {
		out = PatrolMarker + out
	}
	return out
}

// Placements encodes the placement of columns 1..5 as five letters, e.g. "LMRWW".
func (l List) Placements() string {
	var b [ColumnCount]byte
	for i := range b {
		b[i] = 'W'
	}
	for _, c := range l.Columns {
		if c.Number >= 1 && c.Number <= ColumnCount {
			b[c.Number-1] = c.Placement.Letter()
		}
	}
	return string(b[:])
}

// ApplyPlacements sets column placements from a Placements code. The list
// is unchanged on error.
//
// Postcondition: Returns nil, or an error wrapping ErrInvalidPlacement.
func (l *List) ApplyPlacements(code string) error {
	if len(code) != ColumnCount {
		return fmt.Errorf("%w: %q must have %d letters", ErrInvalidPlacement, code, ColumnCount)
	}
	var parsed [ColumnCount]Placement
	for i := 0; i < ColumnCount; i++ {
		p, err := PlacementFromLetter(code[i])
		if err != nil {
			return fmt.Errorf("%w (in %q)", err, code)
		}
		parsed[i] = p
	}
	for i := range l.Columns {
		n := l.Columns[i].Number
		if n >= 1 && n <= ColumnCount {
			l.Columns[i].Placement = parsed[n-1]
		}
	}
	return nil
}

// WhereColumn returns the columns with placement p, in column order.
func (l List) WhereColumn(p Placement) []Column {
	var out []Column
	for _, c := range l.Columns {
		if c.Placement == p {
			out = append(out, c)
		}
	}
	return out
}

// At returns the first column at placement p, if any.
func (l List) At(p Placement) (Column, bool) {
	for _, c := range l.Columns {
		if c.Placement == p {
			return c, true
		}
	}
	return Column{}, false
}

// WhereNumber returns the column numbered n.
//
// Postcondition: Returns the column, or an error wrapping ErrColumnNotFound.
func (l List) WhereNumber(n int) (Column, error) {
	i, err := l.indexOf(n)
	if err != nil {
		return Column{}, err
	}
	return l.Columns[i], nil
}

func (l List) indexOf(n int) (int, error) {
	for i, c := range l.Columns {
		if c.Number == n {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %d", ErrColumnNotFound, n)
}

// SetPlacement moves column n to placement p.
//
// Postcondition: Returns nil, or an error wrapping ErrColumnNotFound.
func (l *List) SetPlacement(n int, p Placement) error {
	i, err := l.indexOf(n)
	if err != nil {
		return err
	}
	l.Columns[i].Placement = p
	return nil
}

// SwapColumns exchanges the placements (not the ships) of columns a and b.
//
// Postcondition: Returns nil, or an error wrapping ErrColumnNotFound with the
// list unchanged.
func (l *List) SwapColumns(a, b int) error {
	ia, err := l.indexOf(a)
	if err != nil {
		return err
	}
	ib, err := l.indexOf(b)
	if err != nil {
		return err
	}
	l.Columns[ia].Placement, l.Columns[ib].Placement = l.Columns[ib].Placement, l.Columns[ia].Placement
	return nil
}

// ReplaceColumn stores c in the slot holding c.Number.
//
// Postcondition: Returns nil, or an error wrapping ErrColumnNotFound.
func (l *List) ReplaceColumn(c Column) error {
	i, err := l.indexOf(c.Number)
	if err != nil {
		return err
	}
	l.Columns[i] = c
	return nil
}

// LaneOccupant names the column currently fighting in a lane.
type LaneOccupant struct {
	Placement Placement
	Column    int
}

// SwapOptions lists what a side may swap: the occupied lanes (candidates to
// pull back) and the non-empty waiting columns (candidates to bring in).
type SwapOptions struct {
	Lanes   []LaneOccupant
	Waiting []int
}

// SwapOptions enumerates the swap candidates.
//
// Postcondition: Returns ErrNoWaitingFleet when no waiting column has ships.
func (l List) SwapOptions() (SwapOptions, error) {
	var opts SwapOptions
	for _, c := range l.WhereColumn(Waiting) {
		if !c.Empty() {
			opts.Waiting = append(opts.Waiting, c.Number)
		}
	}
	if len(opts.Waiting) == 0 {
		return SwapOptions{}, ErrNoWaitingFleet
	}
	for _, p := range ActivePlacements() {
		if c, ok := l.At(p); ok {
			opts.Lanes = append(opts.Lanes, LaneOccupant{Placement: p, Column: c.Number})
		}
	}
	return opts, nil
}

// FreeLanes returns the lanes with no column assigned, in lane order.
func (l List) FreeLanes() []Placement {
	var out []Placement
	for _, p := range ActivePlacements() {
		if _, ok := l.At(p); !ok {
			out = append(out, p)
		}
	}
	return out
}

// HasShips reports whether any column, in any placement, holds a ship.
func (l List) HasShips() bool {
	for _, c := range l.Columns {
		if !c.Empty() {
			return true
		}
	}
	return false
}

// Attack returns the patrol-adjusted attack of the column at placement p,
// or 0 when no column is there.
func (l List) Attack(p Placement) int {
	c, ok := l.At(p)
	if !ok {
		return 0
	}
	return c.Attack(l.PatrolMode)
}

// Defence returns the patrol-adjusted defence of the column at placement p,
// or 0 when no column is there.
func (l List) Defence(p Placement) int {
	c, ok := l.At(p)
	if !ok {
		return 0
	}
	return c.Defence(l.PatrolMode)
}

// Equal reports structural equality of the patrol flag and all columns.
func (l List) Equal(other List) bool {
	if l.PatrolMode != other.PatrolMode {
		return false
	}
	for i := range l.Columns {
		if !l.Columns[i].Equal(other.Columns[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of l.
func (l List) Clone() List {
	out := l
	for i := range l.Columns {
		out.Columns[i] = l.Columns[i].clone()
	}
	return out
}

// String renders every column, preceded by "PATROL MODE" when set.
func (l List) String() string {
	var lines []string
	if l.PatrolMode {
		lines = append(lines, "PATROL MODE")
	}
	for _, c := range l.Columns {
		lines = append(lines, c.String())
	}
	return strings.Join(lines, "\n")
}

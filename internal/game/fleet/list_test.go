package fleet_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/heardround/internal/game/fleet"
	"github.com/cory-johannsen/heardround/internal/game/ship"
)

func TestNewList_AllWaiting(t *testing.T) {
	l := fleet.NewList()
	waiting := l.WhereColumn(fleet.Waiting)
	require.Len(t, waiting, 5)
	for i, c := range waiting {
		assert.Equal(t, i+1, c.Number)
		assert.True(t, c.Empty())
	}
	assert.False(t, l.HasShips())
}

func TestWhereColumn_FiltersInOrder(t *testing.T) {
	l := fleet.NewList()
	require.NoError(t, l.SetPlacement(1, fleet.Middle))

	waiting := l.WhereColumn(fleet.Waiting)
	require.Len(t, waiting, 4)
	assert.Equal(t, []int{2, 3, 4, 5}, numbers(waiting))

	middle := l.WhereColumn(fleet.Middle)
	assert.Equal(t, []int{1}, numbers(middle))
}

func numbers(cols []fleet.Column) []int {
	out := make([]int, len(cols))
	for i, c := range cols {
		out[i] = c.Number
	}
	return out
}

func TestParseNotation(t *testing.T) {
	l, err := fleet.ParseNotation("F10[1,0]|LC12[1,1]|BS30[3,0]")
	require.NoError(t, err)
	assert.False(t, l.PatrolMode)

	c1, err := l.WhereNumber(1)
	require.NoError(t, err)
	assert.Equal(t, []ship.Ship{frigate(10), cruiser(12)}, c1.Ships())

	c3, err := l.WhereNumber(3)
	require.NoError(t, err)
	assert.Equal(t, []ship.Ship{ship.New(ship.Battleship)}, c3.Ships())

	for _, c := range l.Columns {
		assert.Equal(t, fleet.Waiting, c.Placement)
	}
}

func TestParseNotation_PatrolMarker(t *testing.T) {
	l, err := fleet.ParseNotation("<P>SDB6[2,0]")
	require.NoError(t, err)
	assert.True(t, l.PatrolMode)
	c, _ := l.WhereNumber(2)
	assert.Len(t, c.Slots, 1)
}

func TestParseNotation_Empty(t *testing.T) {
	l, err := fleet.ParseNotation("")
	require.NoError(t, err)
	assert.True(t, fleet.NewList().Equal(l))

	p, err := fleet.ParseNotation("<P>")
	require.NoError(t, err)
	assert.True(t, p.PatrolMode)
	assert.False(t, p.HasShips())
}

func TestParseNotation_InvalidToken(t *testing.T) {
	for _, text := range []string{
		"F10",
		"F10[1]",
		"F10[6,0]",
		"F10[0,0]",
		"XX10[1,0]",
		"F10[1,0]|garbage",
		"10[1,0]",
	} {
		_, err := fleet.ParseNotation(text)
		require.Error(t, err, text)
		assert.True(t, errors.Is(err, fleet.ErrInvalidToken), "text=%q err=%v", text, err)
	}
}

func TestParseNotation_ErrorNamesToken(t *testing.T) {
	_, err := fleet.ParseNotation("F10[1,0]|QQ3[2,0]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QQ3[2,0]")
	assert.True(t, errors.Is(err, ship.ErrUnknownKind))
}

func TestNotation_RoundTrip(t *testing.T) {
	for _, patrol := range []bool{false, true} {
		l := fleet.NewList()
		l.PatrolMode = patrol
		l.Columns[0].AddShip(frigate(10), 0)
		l.Columns[0].AddShip(cruiser(4), 1)
		l.Columns[2].AddShip(ship.New(ship.Battleship), 0)
		l.Columns[4].AddShip(ship.New(ship.SurveyShip), 3)

		got, err := fleet.ParseNotation(l.Notation())
		require.NoError(t, err)
		assert.True(t, l.Equal(got), "patrol=%v notation=%s", patrol, l.Notation())
	}
}

func TestNotation_Property_RoundTrip(t *testing.T) {
	kinds := ship.Kinds()
	rapid.Check(t, func(rt *rapid.T) {
		l := fleet.NewList()
		l.PatrolMode = rapid.Bool().Draw(rt, "patrol")
		n := rapid.IntRange(0, 12).Draw(rt, "ships")
		for i := 0; i < n; i++ {
			k := rapid.SampledFrom(kinds).Draw(rt, "kind")
			hp := rapid.IntRange(0, k.MaxHealth()).Draw(rt, "hp")
			col := rapid.IntRange(0, 4).Draw(rt, "col")
			l.Columns[col].AddShip(ship.Ship{Kind: k, CurrentHealth: hp}, i)
		}
		got, err := fleet.ParseNotation(l.Notation())
		require.NoError(rt, err)
		assert.True(rt, l.Equal(got))
	})
}

func TestPlacements_RoundTrip(t *testing.T) {
	l := fleet.NewList()
	require.NoError(t, l.SetPlacement(1, fleet.Right))
	require.NoError(t, l.SetPlacement(2, fleet.Middle))
	require.NoError(t, l.SetPlacement(3, fleet.Left))
	assert.Equal(t, "RMLWW", l.Placements())

	other := fleet.NewList()
	require.NoError(t, other.ApplyPlacements(l.Placements()))
	assert.True(t, l.Equal(other))
}

func TestApplyPlacements_InvalidLeavesListUnchanged(t *testing.T) {
	l := fleet.NewList()
	err := l.ApplyPlacements("LMXWW")
	assert.True(t, errors.Is(err, fleet.ErrInvalidPlacement))
	assert.Equal(t, "WWWWW", l.Placements())

	err = l.ApplyPlacements("LM")
	assert.True(t, errors.Is(err, fleet.ErrInvalidPlacement))
}

func TestWhereNumber_NotFound(t *testing.T) {
	_, err := fleet.NewList().WhereNumber(9)
	assert.True(t, errors.Is(err, fleet.ErrColumnNotFound))
}

func TestSwapColumns_ExchangesPlacementOnly(t *testing.T) {
	l, err := fleet.ParseNotation("F10[1,0]|LC15[4,0]")
	require.NoError(t, err)
	require.NoError(t, l.SetPlacement(1, fleet.Left))

	require.NoError(t, l.SwapColumns(1, 4))

	c1, _ := l.WhereNumber(1)
	c4, _ := l.WhereNumber(4)
	assert.Equal(t, fleet.Waiting, c1.Placement)
	assert.Equal(t, fleet.Left, c4.Placement)
	assert.Equal(t, []ship.Ship{frigate(10)}, c1.Ships())
	assert.Equal(t, []ship.Ship{cruiser(15)}, c4.Ships())
}

func TestSwapColumns_UnknownColumn(t *testing.T) {
	l := fleet.NewList()
	require.NoError(t, l.SetPlacement(1, fleet.Left))
	err := l.SwapColumns(1, 7)
	assert.True(t, errors.Is(err, fleet.ErrColumnNotFound))
	c1, _ := l.WhereNumber(1)
	assert.Equal(t, fleet.Left, c1.Placement)
}

func TestSwapOptions_NoWaitingShips(t *testing.T) {
	_, err := fleet.NewList().SwapOptions()
	assert.True(t, errors.Is(err, fleet.ErrNoWaitingFleet))

	l, err := fleet.ParseNotation("F10[1,0]")
	require.NoError(t, err)
	require.NoError(t, l.SetPlacement(1, fleet.Middle))
	_, err = l.SwapOptions()
	assert.True(t, errors.Is(err, fleet.ErrNoWaitingFleet))
}

func TestSwapOptions_ListsLanesAndWaiting(t *testing.T) {
	l, err := fleet.ParseNotation("F10[1,0]|F10[2,0]|F10[4,0]|F10[5,0]")
	require.NoError(t, err)

	opts, err := l.SwapOptions()
	require.NoError(t, err)
	assert.Empty(t, opts.Lanes)
	assert.Equal(t, []int{1, 2, 4, 5}, opts.Waiting)

	require.NoError(t, l.SetPlacement(2, fleet.Right))
	require.NoError(t, l.SetPlacement(1, fleet.Left))
	opts, err = l.SwapOptions()
	require.NoError(t, err)
	assert.Equal(t, []fleet.LaneOccupant{
		{Placement: fleet.Left, Column: 1},
		{Placement: fleet.Right, Column: 2},
	}, opts.Lanes)
	assert.Equal(t, []int{4, 5}, opts.Waiting)
	assert.Equal(t, []fleet.Placement{fleet.Middle}, l.FreeLanes())
}

func TestList_PatrolHalvesEveryLane(t *testing.T) {
	l, err := fleet.ParseNotation("<P>F10[1,0]|D8[1,1]|LC15[2,0]")
	require.NoError(t, err)
	require.NoError(t, l.SetPlacement(1, fleet.Left))
	require.NoError(t, l.SetPlacement(2, fleet.Middle))

	// Column 1: attack 8+6=14 -> 7, defence 6+4=10 -> 5.
	assert.Equal(t, 7, l.Attack(fleet.Left))
	assert.Equal(t, 5, l.Defence(fleet.Left))
	// Column 2: attack 10 -> 5, defence 8 -> 4.
	assert.Equal(t, 5, l.Attack(fleet.Middle))
	assert.Equal(t, 4, l.Defence(fleet.Middle))
	assert.Zero(t, l.Attack(fleet.Right))
}

func TestList_CloneIsIndependent(t *testing.T) {
	l, err := fleet.ParseNotation("F10[1,0]")
	require.NoError(t, err)
	c := l.Clone()
	c.Columns[0].Slots[0].Ship.CurrentHealth = 1
	assert.Equal(t, 10, l.Columns[0].Slots[0].Ship.CurrentHealth)
}

func TestList_String(t *testing.T) {
	l, err := fleet.ParseNotation("<P>F10[2,0]")
	require.NoError(t, err)
	assert.Equal(t,
		"PATROL MODE\nFleet column 1\nFleet column 2\nShips: `Frigate (10/10)`\nFleet column 3\nFleet column 4\nFleet column 5",
		l.String())
}

func TestPlacement_Adjacent(t *testing.T) {
	assert.Equal(t, []fleet.Placement{fleet.Middle}, fleet.Left.Adjacent())
	assert.Equal(t, []fleet.Placement{fleet.Left, fleet.Right}, fleet.Middle.Adjacent())
	assert.Equal(t, []fleet.Placement{fleet.Middle}, fleet.Right.Adjacent())
	assert.Empty(t, fleet.Waiting.Adjacent())
}

func TestParsePlacement(t *testing.T) {
	p, err := fleet.ParsePlacement("left")
	require.NoError(t, err)
	assert.Equal(t, fleet.Left, p)
	_, err = fleet.ParsePlacement("up")
	assert.True(t, errors.Is(err, fleet.ErrInvalidPlacement))
}

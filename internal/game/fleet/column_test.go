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

func frigate(hp int) ship.Ship { return ship.Ship{Kind: ship.Frigate, CurrentHealth: hp} }
func cruiser(hp int) ship.Ship { return ship.Ship{Kind: ship.LightCruiser, CurrentHealth: hp} }

func column(n int, ships ...ship.Ship) fleet.Column {
	c := fleet.NewColumn(n)
	for i, s := range ships {
		c.AddShip(s, i)
	}
	return c
}

func TestColumn_AddShipOrdersByPosition(t *testing.T) {
	c := fleet.NewColumn(1)
	c.AddShip(cruiser(15), 2)
	c.AddShip(frigate(10), 1)

	require.Len(t, c.Slots, 2)
	assert.Equal(t, fleet.Slot{Ship: frigate(10), Position: 1}, c.Slots[0])
	assert.Equal(t, fleet.Slot{Ship: cruiser(15), Position: 2}, c.Slots[1])
}

func TestColumn_AddShipStableForEqualPositions(t *testing.T) {
	c := fleet.NewColumn(1)
	c.AddShip(frigate(1), 0)
	c.AddShip(frigate(2), 0)
	c.AddShip(frigate(3), 0)

	assert.Equal(t, []ship.Ship{frigate(1), frigate(2), frigate(3)}, c.Ships())
}

func TestColumn_AttackDefence(t *testing.T) {
	c := column(1, cruiser(15), frigate(10))
	assert.Equal(t, 18, c.Attack(false))
	assert.Equal(t, 14, c.Defence(false))
	assert.Equal(t, 9, c.Attack(true))
	assert.Equal(t, 7, c.Defence(true))
}

func TestColumn_PatrolFloorsOddTotals(t *testing.T) {
	// Destroyer attack 6 + Corvette attack 4 + FAC attack 4 = 14; defence 4+4+1 = 9.
	c := column(1,
		ship.New(ship.Destroyer),
		ship.New(ship.Corvette),
		ship.New(ship.FACSquadron),
	)
	assert.Equal(t, 9, c.Defence(false))
	assert.Equal(t, 4, c.Defence(true), "9/2 must floor to 4")
	assert.Equal(t, 7, fleet.EffectiveAttack(c, true))
	assert.Equal(t, 4, fleet.EffectiveDefence(c, true))
}

func TestColumn_EmptyHasNoStrength(t *testing.T) {
	c := fleet.NewColumn(3)
	assert.Zero(t, c.Attack(false))
	assert.Zero(t, c.Defence(true))
}

func TestColumn_TakeDamage(t *testing.T) {
	tests := []struct {
		name      string
		base      fleet.Column
		damage    int
		want      fleet.Column
		carryOver int
	}{
		{"partial", column(1, frigate(10)), 5, column(1, frigate(5)), 0},
		{"exact kill", column(1, frigate(10)), 10, fleet.NewColumn(1), 0},
		{"overkill", column(1, frigate(10)), 15, fleet.NewColumn(1), 5},
		{"soaks through", column(1, frigate(10), frigate(10)), 15, column(1, frigate(5)), 0},
		{"zero damage", column(1, frigate(10)), 0, column(1, frigate(10)), 0},
		{"empty column", fleet.NewColumn(1), 7, fleet.NewColumn(1), 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, carry, _ := tc.base.TakeDamage(tc.damage)
			assert.True(t, tc.want.Equal(got), "want %v\ngot %v", tc.want, got)
			assert.Equal(t, tc.carryOver, carry)
		})
	}
}

func TestColumn_TakeDamageKeepsRemainingPositions(t *testing.T) {
	c := fleet.NewColumn(1)
	c.AddShip(frigate(10), 0)
	c.AddShip(frigate(10), 1)

	got, _, _ := c.TakeDamage(15)
	require.Len(t, got.Slots, 1)
	assert.Equal(t, fleet.Slot{Ship: frigate(5), Position: 1}, got.Slots[0])
}

func TestColumn_TakeDamageDoesNotMutateReceiver(t *testing.T) {
	c := column(1, frigate(10), frigate(10))
	_, _, _ = c.TakeDamage(15)
	assert.True(t, column(1, frigate(10), frigate(10)).Equal(c))
}

func TestColumn_TakeDamageEvents(t *testing.T) {
	_, _, events := column(1, frigate(10), frigate(10)).TakeDamage(15)
	require.Len(t, events, 2)
	assert.Equal(t, fleet.Destroyed, events[0].Outcome)
	assert.Equal(t, 10, events[0].Amount)
	assert.Equal(t, fleet.Damaged, events[1].Outcome)
	assert.Equal(t, 5, events[1].Amount)
	assert.Equal(t, "💥 Frigate (10/10) is destroyed!", events[0].String())
	assert.Equal(t, "Frigate (10/10) takes 5 damage", events[1].String())
}

func TestColumn_Property_DamageIsConserved(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(rt, "ships")
		c := fleet.NewColumn(1)
		total := 0
		for i := 0; i < n; i++ {
			hp := rapid.IntRange(1, 10).Draw(rt, "hp")
			total += hp
			c.AddShip(frigate(hp), i)
		}
		dmg := rapid.IntRange(0, 80).Draw(rt, "dmg")

		got, carry, _ := c.TakeDamage(dmg)
		remaining := 0
		for _, s := range got.Ships() {
			assert.Positive(rt, s.CurrentHealth)
			remaining += s.CurrentHealth
		}
		assert.Equal(rt, dmg, (total-remaining)+carry)
		if carry > 0 {
			assert.True(rt, got.Empty())
		}
	})
}

func TestColumn_String(t *testing.T) {
	c := fleet.NewColumn(1)
	c.AddShip(frigate(10), 2)
	c.AddShip(cruiser(15), 1)
	assert.Equal(t, "Fleet column 1\nShips: `Light Cruiser (15/15)`, `Frigate (10/10)`", c.String())
	assert.Equal(t, "Fleet column 4", fleet.NewColumn(4).String())
}

func TestParseColumn(t *testing.T) {
	tests := []struct {
		text string
		want fleet.Column
	}{
		{"Fleet column 1", fleet.NewColumn(1)},
		{"Fleet column 2\nShips: ", fleet.NewColumn(2)},
		{"Fleet column 1\nShips: `Light Cruiser (10/15)`", column(1, cruiser(10))},
		{"Fleet column 1\nShips: `Light Cruiser (10/15)`, `Frigate (10/10)`", column(1, cruiser(10), frigate(10))},
	}
	for _, tc := range tests {
		got, err := fleet.ParseColumn(tc.text)
		require.NoError(t, err, tc.text)
		assert.True(t, tc.want.Equal(got), "text=%q got=%v", tc.text, got)

		again, err := fleet.ParseColumn(tc.want.String())
		require.NoError(t, err)
		assert.True(t, tc.want.Equal(again))
	}
}

func TestParseColumn_Malformed(t *testing.T) {
	for _, text := range []string{"Column 1", "Fleet column x", "Fleet column 1\nBoats: `Frigate (1/10)`"} {
		_, err := fleet.ParseColumn(text)
		assert.True(t, errors.Is(err, fleet.ErrMalformedColumnText), "text=%q", text)
	}
	_, err := fleet.ParseColumn("Fleet column 1\nShips: `Dreadnought (1/10)`")
	assert.True(t, errors.Is(err, ship.ErrMalformedText))
}

func TestColumn_Equal(t *testing.T) {
	damagedCruiser := cruiser(3)
	tests := []struct {
		a, b fleet.Column
		want bool
	}{
		{fleet.NewColumn(1), fleet.NewColumn(1), true},
		{fleet.NewColumn(2), fleet.NewColumn(1), false},
		{fleet.NewColumn(1), column(1, frigate(10)), false},
		{column(1, frigate(10)), column(1, frigate(10)), true},
		{column(1, frigate(10)), column(1, cruiser(10)), false},
		{column(1, frigate(10)), column(1, frigate(3)), false},
		{column(1, frigate(10), damagedCruiser), column(1, damagedCruiser, frigate(10)), false},
		{column(1, frigate(10), damagedCruiser), column(1, frigate(10), damagedCruiser), true},
	}
	for i, tc := range tests {
		assert.Equal(t, tc.want, tc.a.Equal(tc.b), "case %d", i)
		assert.Equal(t, tc.want, tc.b.Equal(tc.a), "case %d reversed", i)
	}

	left := column(1, frigate(10))
	left.Placement = fleet.Left
	assert.False(t, left.Equal(column(1, frigate(10))))
}

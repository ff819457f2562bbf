package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/heardround/internal/game/combat"
	"github.com/cory-johannsen/heardround/internal/game/fleet"
)

func TestSnapshot_RestoresStatus(t *testing.T) {
	s := battle(t, combat.MissileTwo,
		mustFleet(t, "<P>F10[1,0]|LC4[2,0]|BS30[5,2]", "LRWWM"),
		mustFleet(t, "C6[3,0]", "WWLWW"))

	sn := s.Snapshot("enc-1", "chan-1")
	assert.Equal(t, "enc-1", sn.ID)
	assert.Equal(t, "chan-1", sn.ChannelID)
	assert.Equal(t, "LRWWM", sn.AttackerPlacements)
	assert.Equal(t, "<P>F10[1,0]|LC4[2,0]|BS30[5,2]", sn.AttackerNotation)

	got, err := sn.Status()
	require.NoError(t, err)
	assert.Equal(t, alice, got.Attacker)
	assert.Equal(t, bob, got.Defender)
	assert.Equal(t, combat.MissileTwo, got.Round)
	assert.True(t, s.AttackerFleet.Equal(got.AttackerFleet))
	assert.True(t, s.DefenderFleet.Equal(got.DefenderFleet))
}

func TestSnapshot_RejectsCorruptFleets(t *testing.T) {
	sn := combat.NewStatus(alice, bob).Snapshot("enc-1", "chan-1")

	bad := sn
	bad.DefenderNotation = "ZZ1[1,0]"
	_, err := bad.Status()
	assert.ErrorIs(t, err, fleet.ErrInvalidToken)

	bad = sn
	bad.AttackerPlacements = "LLQ"
	_, err = bad.Status()
	assert.ErrorIs(t, err, fleet.ErrInvalidPlacement)

	bad = sn
	bad.Round = combat.Round(11)
	_, err = bad.Status()
	assert.Error(t, err)
}

func TestEncounter_Snapshot(t *testing.T) {
	eng := combat.NewEngine()
	enc, err := eng.Start("chan-3", alice, bob)
	require.NoError(t, err)
	require.NoError(t, enc.Do(func(s *combat.Status) error { return s.ImportFleet(bob.ID, "F10[2,0]") }))

	sn := enc.Snapshot()
	assert.Equal(t, enc.ID, sn.ID)
	assert.Equal(t, "chan-3", sn.ChannelID)
	assert.Equal(t, "F10[2,0]", sn.DefenderNotation)
	assert.Equal(t, combat.Pending, sn.Round)
}

func TestSnapshot_Property_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := combat.NewStatus(alice, bob)
		s.AttackerFleet = genFleet(rt, "attacker")
		s.DefenderFleet = genFleet(rt, "defender")
		s.Round = combat.Round(rapid.IntRange(int(combat.Pending), int(combat.Finished)).Draw(rt, "round"))

		got, err := s.Snapshot("id", "chan").Status()
		require.NoError(rt, err)
		assert.True(rt, s.AttackerFleet.Equal(got.AttackerFleet))
		assert.True(rt, s.DefenderFleet.Equal(got.DefenderFleet))
		assert.Equal(rt, s.Round, got.Round)
	})
}

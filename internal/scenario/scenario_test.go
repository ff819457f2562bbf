package scenario_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/heardround/internal/game/combat"
	"github.com/cory-johannsen/heardround/internal/game/fleet"
	"github.com/cory-johannsen/heardround/internal/scenario"
)

const duelYAML = `
scenario:
  name: Picket duel
  description: |
    A light cruiser runs down a frigate.
  attacker:
    name: Alice
    fleet: "LC15[1,0]"
    placements: LWWWW
  defender:
    name: Bob
    fleet: "F10[1,0]"
    placements: LWWWW
`

func TestLoadBytes_Valid(t *testing.T) {
	sc, err := scenario.LoadBytes([]byte(duelYAML))
	require.NoError(t, err)
	assert.Equal(t, "Picket duel", sc.Name)
	assert.Equal(t, "A light cruiser runs down a frigate.", sc.Description)

	s := sc.Status()
	assert.Equal(t, combat.MissileOne, s.Round)
	assert.Equal(t, "Alice", s.Attacker.DisplayName)
	col, ok := s.DefenderFleet.At(fleet.Left)
	require.True(t, ok)
	assert.Equal(t, 1, col.Number)
}

func TestLoadBytes_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown key", "scenario:\n  name: x\n  colour: red\n", nil},
		{"missing names", "scenario:\n  attacker:\n    fleet: F10[1,0]\n", scenario.ErrInvalidScenario},
		{"bad round", "scenario:\n  name: x\n  start_round: 4\n  attacker: {name: a, fleet: 'F10[1,0]'}\n  defender: {name: b, fleet: 'F10[1,0]'}\n", scenario.ErrInvalidScenario},
		{"same names", "scenario:\n  name: x\n  attacker: {name: a, fleet: 'F10[1,0]'}\n  defender: {name: a, fleet: 'F10[1,0]'}\n", scenario.ErrInvalidScenario},
		{"empty fleet", "scenario:\n  name: x\n  attacker: {name: a, fleet: ''}\n  defender: {name: b, fleet: 'F10[1,0]'}\n", scenario.ErrInvalidScenario},
		{"bad token", "scenario:\n  name: x\n  attacker: {name: a, fleet: 'Q1[1,0]'}\n  defender: {name: b, fleet: 'F10[1,0]'}\n", fleet.ErrInvalidToken},
		{"bad placements", "scenario:\n  name: x\n  attacker: {name: a, fleet: 'F10[1,0]', placements: LLX}\n  defender: {name: b, fleet: 'F10[1,0]'}\n", fleet.ErrInvalidPlacement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scenario.LoadBytes([]byte(tt.yaml))
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestSimulate_ResolvesEveryRound(t *testing.T) {
	sc, err := scenario.LoadBytes([]byte(duelYAML))
	require.NoError(t, err)

	res, err := sc.Simulate(0)
	require.NoError(t, err)
	require.Len(t, res.Rounds, 3)
	assert.Equal(t, combat.RailGun, res.Rounds[2].Round)
	assert.Contains(t, res.Rounds[0].Lines, "Alice deals 4 damage to Bob's Left column")
	assert.Contains(t, res.Rounds[2].Lines, "Alice deals 10 damage to Bob's Left column")
	assert.True(t, res.Final.Finished())
	assert.Equal(t, 7, res.Remaining(combat.Attacker))
	assert.Equal(t, 0, res.Remaining(combat.Defender))

	// The scenario can be run again from the start.
	again, err := sc.Simulate(1)
	require.NoError(t, err)
	require.Len(t, again.Rounds, 1)
	assert.Equal(t, combat.MissileTwo, again.Final.Round)
	assert.Equal(t, 6, again.Remaining(combat.Defender))
}

func TestSimulate_PatrolOverride(t *testing.T) {
	sc, err := scenario.LoadBytes([]byte(`
scenario:
  name: Patrol
  start_round: 2
  attacker: {name: Alice, fleet: "LC15[1,0]", placements: LWWWW}
  defender: {name: Bob, fleet: "F10[1,0]", placements: LWWWW, patrol: true}
`))
	require.NoError(t, err)

	res, err := sc.Simulate(1)
	require.NoError(t, err)
	assert.Equal(t, combat.MissileTwo, res.Rounds[0].Round)
	assert.Contains(t, res.Rounds[0].Lines, "Alice deals 7 damage to Bob's Left column")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "duel.yaml"), []byte(duelYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	all, err := scenario.LoadDir(dir)
	require.NoError(t, err)
	require.Contains(t, all, "duel")
	assert.Len(t, all, 1)

	_, err = scenario.LoadDir(t.TempDir())
	assert.Error(t, err)
}

// Property: simulated damage never raises a fleet's remaining health.
func TestSimulate_Property_HealthNeverGrows(t *testing.T) {
	codes := []string{"BS", "BC", "HC", "LC", "F", "D", "C"}
	rapid.Check(t, func(rt *rapid.T) {
		token := func(label string) string {
			return fmt.Sprintf("%s%d[%d,0]",
				rapid.SampledFrom(codes).Draw(rt, label+"-code"),
				rapid.IntRange(1, 30).Draw(rt, label+"-health"),
				rapid.IntRange(1, 3).Draw(rt, label+"-col"))
		}
		doc := fmt.Sprintf("scenario:\n  name: p\n"+
			"  attacker: {name: a, fleet: '%s', placements: LMRWW}\n"+
			"  defender: {name: d, fleet: '%s', placements: LMRWW}\n", token("a"), token("d"))
		sc, err := scenario.LoadBytes([]byte(doc))
		if err != nil {
			rt.Fatalf("load: %v", err)
		}
		start := scenario.Result{Final: sc.Status()}
		end, err := sc.Simulate(0)
		if err != nil {
			rt.Fatalf("simulate: %v", err)
		}
		for _, side := range []combat.Side{combat.Attacker, combat.Defender} {
			if end.Remaining(side) > start.Remaining(side) {
				rt.Fatalf("%s health grew from %d to %d", side, start.Remaining(side), end.Remaining(side))
			}
		}
	})
}

func TestShippedScenariosLoad(t *testing.T) {
	all, err := scenario.LoadDir(filepath.Join("..", "..", "scenarios"))
	require.NoError(t, err)
	for name, sc := range all {
		_, err := sc.Simulate(0)
		assert.NoError(t, err, name)
	}
}

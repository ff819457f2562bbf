// Package scenario loads YAML battle scenarios and resolves them offline,
// without prompting either side.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/heardround/internal/game/combat"
	"github.com/cory-johannsen/heardround/internal/game/fleet"
)

// ErrInvalidScenario is returned when a scenario file fails validation.
var ErrInvalidScenario = errors.New("invalid scenario")

type yamlScenarioFile struct {
	Scenario yamlScenario `yaml:"scenario"`
}

type yamlScenario struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	StartRound  int      `yaml:"start_round"`
	Attacker    yamlSide `yaml:"attacker"`
	Defender    yamlSide `yaml:"defender"`
}

type yamlSide struct {
	Name       string `yaml:"name"`
	Fleet      string `yaml:"fleet"`
	Placements string `yaml:"placements"`
	// Patrol overrides the notation's patrol marker when set.
	Patrol *bool `yaml:"patrol"`
}

// Scenario is a validated battle ready to simulate.
type Scenario struct {
	Name        string
	Description string
	status      *combat.Status
}

// Status returns a fresh copy of the scenario's starting state.
func (s *Scenario) Status() *combat.Status {
	return s.status.Clone()
}

// LoadFile reads and validates a single scenario YAML file.
//
// Precondition: path must point to a scenario YAML file.
// Postcondition: Returns a validated Scenario or a non-nil error.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates a scenario. Unknown keys are rejected.
//
// Postcondition: Returns a validated Scenario, or an error wrapping
// ErrInvalidScenario, fleet.ErrInvalidToken, or fleet.ErrInvalidPlacement.
func LoadBytes(data []byte) (*Scenario, error) {
	var file yamlScenarioFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	return convertYAMLScenario(file.Scenario)
}

// LoadDir loads every .yaml and .yml file in dir, keyed by file name
// without its extension.
//
// Postcondition: Returns at least one scenario or a non-nil error.
func LoadDir(dir string) (map[string]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario directory %s: %w", dir, err)
	}
	out := make(map[string]*Scenario)
	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		sc, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading scenario from %s: %w", name, err)
		}
		out[strings.TrimSuffix(name, ext)] = sc
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	return out, nil
}

func convertYAMLScenario(ys yamlScenario) (*Scenario, error) {
	var problems []string
	if ys.Name == "" {
		problems = append(problems, "name must not be empty")
	}
	if ys.StartRound == 0 {
		ys.StartRound = combat.MissileOne.Number()
	}
	round := combat.Round(ys.StartRound)
	if !round.Active() {
		problems = append(problems, fmt.Sprintf("start_round must be 1-3, got %d", ys.StartRound))
	}
	if ys.Attacker.Name == "" {
		problems = append(problems, "attacker.name must not be empty")
	}
	if ys.Defender.Name == "" {
		problems = append(problems, "defender.name must not be empty")
	}
	if ys.Attacker.Name != "" && ys.Attacker.Name == ys.Defender.Name {
		problems = append(problems, "attacker and defender need different names")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidScenario, strings.Join(problems, "; "))
	}

	status := combat.NewStatus(
		combat.Identity{ID: "attacker", DisplayName: ys.Attacker.Name},
		combat.Identity{ID: "defender", DisplayName: ys.Defender.Name},
	)
	sides := []struct {
		side combat.Side
		yaml yamlSide
	}{{combat.Attacker, ys.Attacker}, {combat.Defender, ys.Defender}}
	for _, sd := range sides {
		l, err := buildFleet(sd.yaml)
		if err != nil {
			return nil, fmt.Errorf("%s fleet: %w", sd.side, err)
		}
		*status.Fleet(sd.side) = l
	}
	status.Round = round

	return &Scenario{Name: ys.Name, Description: strings.TrimSpace(ys.Description), status: status}, nil
}

func buildFleet(ys yamlSide) (fleet.List, error) {
	l, err := fleet.ParseNotation(ys.Fleet)
	if err != nil {
		return fleet.List{}, err
	}
	if !l.HasShips() {
		return fleet.List{}, fmt.Errorf("%w: fleet has no ships", ErrInvalidScenario)
	}
	placements := ys.Placements
	if placements == "" {
		placements = strings.Repeat("W", fleet.ColumnCount)
	}
	if err := l.ApplyPlacements(placements); err != nil {
		return fleet.List{}, err
	}
	if ys.Patrol != nil {
		l.PatrolMode = *ys.Patrol
	}
	return l, nil
}

package combat

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/heardround/internal/game/fleet"
)

// Snapshot is the storable form of an encounter: each fleet as notation plus
// its placement code.
type Snapshot struct {
	ID                 string
	ChannelID          string
	Attacker           Identity
	Defender           Identity
	AttackerNotation   string
	AttackerPlacements string
	DefenderNotation   string
	DefenderPlacements string
	Round              Round
	UpdatedAt          time.Time
}

// Snapshot captures s for storage.
func (s *Status) Snapshot(id, channelID string) Snapshot {
	return Snapshot{
		ID:                 id,
		ChannelID:          channelID,
		Attacker:           s.Attacker,
		Defender:           s.Defender,
		AttackerNotation:   s.AttackerFleet.Notation(),
		AttackerPlacements: s.AttackerFleet.Placements(),
		DefenderNotation:   s.DefenderFleet.Notation(),
		DefenderPlacements: s.DefenderFleet.Placements(),
		Round:              s.Round,
	}
}

// Status rebuilds the encounter state.
//
// Postcondition: Returns the Status, or an error wrapping fleet.ErrInvalidToken
// or fleet.ErrInvalidPlacement.
func (sn Snapshot) Status() (*Status, error) {
	if sn.Round < Pending || sn.Round > Finished {
		return nil, fmt.Errorf("snapshot %s: invalid round %d", sn.ID, int(sn.Round))
	}
	attacker, err := restoreFleet(sn.AttackerNotation, sn.AttackerPlacements)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: attacker fleet: %w", sn.ID, err)
	}
	defender, err := restoreFleet(sn.DefenderNotation, sn.DefenderPlacements)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: defender fleet: %w", sn.ID, err)
	}
	return &Status{
		Attacker:      sn.Attacker,
		Defender:      sn.Defender,
		AttackerFleet: attacker,
		DefenderFleet: defender,
		Round:         sn.Round,
	}, nil
}

func restoreFleet(notation, placements string) (fleet.List, error) {
	l, err := fleet.ParseNotation(notation)
	if err != nil {
		return fleet.List{}, err
	}
	if err := l.ApplyPlacements(placements); err != nil {
		return fleet.List{}, err
	}
	return l, nil
}

// Snapshot captures the encounter for storage.
func (e *Encounter) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status.Snapshot(e.ID, e.ChannelID)
}

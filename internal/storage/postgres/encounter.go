package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/heardround/internal/game/combat"
)

// ErrEncounterNotFound is returned when an encounter lookup yields no results.
var ErrEncounterNotFound = errors.New("encounter not found")

const encounterColumns = `id, channel_id, attacker_id, attacker_name, defender_id, defender_name,
	attacker_fleet, attacker_placements, defender_fleet, defender_placements, round, updated_at`

// EncounterRepository stores one snapshot row per encounter.
type EncounterRepository struct {
	db *pgxpool.Pool
}

// NewEncounterRepository creates an EncounterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEncounterRepository(db *pgxpool.Pool) *EncounterRepository {
	return &EncounterRepository{db: db}
}

// Save inserts sn or replaces the stored snapshot with the same ID.
//
// Precondition: sn.ID and sn.ChannelID must be non-empty.
// Postcondition: The stored row matches sn and its updated_at is now.
func (r *EncounterRepository) Save(ctx context.Context, sn combat.Snapshot) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO encounters
			(id, channel_id, attacker_id, attacker_name, defender_id, defender_name,
			 attacker_fleet, attacker_placements, defender_fleet, defender_placements, round)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET
			channel_id          = EXCLUDED.channel_id,
			attacker_fleet      = EXCLUDED.attacker_fleet,
			attacker_placements = EXCLUDED.attacker_placements,
			defender_fleet      = EXCLUDED.defender_fleet,
			defender_placements = EXCLUDED.defender_placements,
			round               = EXCLUDED.round,
			updated_at          = NOW()`,
		sn.ID, sn.ChannelID,
		sn.Attacker.ID, sn.Attacker.DisplayName,
		sn.Defender.ID, sn.Defender.DisplayName,
		sn.AttackerNotation, sn.AttackerPlacements,
		sn.DefenderNotation, sn.DefenderPlacements,
		int16(sn.Round),
	)
	if err != nil {
		return fmt.Errorf("saving encounter %s: %w", sn.ID, err)
	}
	return nil
}

// Get retrieves a snapshot by encounter ID.
//
// Postcondition: Returns the Snapshot or ErrEncounterNotFound.
func (r *EncounterRepository) Get(ctx context.Context, id string) (combat.Snapshot, error) {
	sn, err := scanEncounter(r.db.QueryRow(ctx,
		`SELECT `+encounterColumns+` FROM encounters WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return combat.Snapshot{}, ErrEncounterNotFound
		}
		return combat.Snapshot{}, fmt.Errorf("querying encounter: %w", err)
	}
	return sn, nil
}

// ListUnfinished returns every encounter that has not reached the finished
// round, oldest update first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *EncounterRepository) ListUnfinished(ctx context.Context) ([]combat.Snapshot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+encounterColumns+` FROM encounters WHERE round < $1 ORDER BY updated_at ASC`,
		int16(combat.Finished))
	if err != nil {
		return nil, fmt.Errorf("listing unfinished encounters: %w", err)
	}
	defer rows.Close()

	out := make([]combat.Snapshot, 0)
	for rows.Next() {
		sn, err := scanEncounter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning encounter row: %w", err)
		}
		out = append(out, sn)
	}
	return out, rows.Err()
}

// DeleteFinished removes finished encounters and returns how many rows went.
func (r *EncounterRepository) DeleteFinished(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM encounters WHERE round >= $1`, int16(combat.Finished))
	if err != nil {
		return 0, fmt.Errorf("deleting finished encounters: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanEncounter(row pgx.Row) (combat.Snapshot, error) {
	var (
		sn    combat.Snapshot
		round int16
	)
	err := row.Scan(
		&sn.ID, &sn.ChannelID,
		&sn.Attacker.ID, &sn.Attacker.DisplayName,
		&sn.Defender.ID, &sn.Defender.DisplayName,
		&sn.AttackerNotation, &sn.AttackerPlacements,
		&sn.DefenderNotation, &sn.DefenderPlacements,
		&round, &sn.UpdatedAt,
	)
	sn.Round = combat.Round(round)
	return sn, err
}

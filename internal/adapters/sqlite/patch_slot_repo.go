package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/treewarden/internal/ports/secondary"
)

// PatchSlotRepository implements secondary.PatchSlotRepository with SQLite.
type PatchSlotRepository struct {
	db *sql.DB
}

// NewPatchSlotRepository creates a new SQLite patch slot repository.
func NewPatchSlotRepository(db *sql.DB) *PatchSlotRepository {
	return &PatchSlotRepository{db: db}
}

// Load retrieves a slot payload.
func (r *PatchSlotRepository) Load(ctx context.Context, slot string) ([]byte, bool, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, "SELECT payload FROM patch_slots WHERE slot = ?", slot).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load patch slot %s: %w", slot, err)
	}
	return []byte(payload), true, nil
}

// Save upserts a slot payload.
func (r *PatchSlotRepository) Save(ctx context.Context, slot string, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO patch_slots (slot, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		slot, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save patch slot %s: %w", slot, err)
	}
	return nil
}

// Ensure PatchSlotRepository implements the interface
var _ secondary.PatchSlotRepository = (*PatchSlotRepository)(nil)

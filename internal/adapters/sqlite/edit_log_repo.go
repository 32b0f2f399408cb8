// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/example/treewarden/internal/ctxutil"
	"github.com/example/treewarden/internal/ports/secondary"
)

// EditLogRepository implements secondary.EditLogRepository with SQLite.
type EditLogRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewEditLogRepository creates a new SQLite edit log repository.
func NewEditLogRepository(db *sql.DB) *EditLogRepository {
	return &EditLogRepository{db: db, now: time.Now}
}

// LogEdit persists a new edit log entry. The actor is taken from ctx when the record has none.
func (r *EditLogRepository) LogEdit(ctx context.Context, entry *secondary.EditLogRecord) error {
	now := r.now().UTC()
	if entry.ID == "" {
		entry.ID = ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	}
	if entry.Actor == "" {
		entry.Actor = ctxutil.ActorFromContext(ctx)
	}
	entry.CreatedAt = now.Format(time.RFC3339)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO edit_log (id, entity_id, action, field_name, old_value, new_value, actor, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.EntityID,
		entry.Action,
		nullString(entry.FieldName),
		nullString(entry.OldValue),
		nullString(entry.NewValue),
		nullString(entry.Actor),
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create edit log entry: %w", err)
	}

	return nil
}

// List retrieves log entries matching the given filters, newest first.
func (r *EditLogRepository) List(ctx context.Context, filters secondary.EditLogFilters) ([]*secondary.EditLogRecord, error) {
	query := `SELECT id, entity_id, action, field_name, old_value, new_value, actor, created_at FROM edit_log WHERE 1=1`
	args := []any{}

	if filters.EntityID != nil {
		query += " AND entity_id = ?"
		args = append(args, *filters.EntityID)
	}

	if filters.Action != "" {
		query += " AND action = ?"
		args = append(args, filters.Action)
	}

	// ULIDs sort by creation time.
	query += " ORDER BY id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list edit log: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.EditLogRecord
	for rows.Next() {
		var (
			fieldName sql.NullString
			oldValue  sql.NullString
			newValue  sql.NullString
			actor     sql.NullString
			createdAt time.Time
		)

		record := &secondary.EditLogRecord{}
		err := rows.Scan(&record.ID,
			&record.EntityID,
			&record.Action,
			&fieldName,
			&oldValue,
			&newValue,
			&actor,
			&createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edit log entry: %w", err)
		}
		record.FieldName = fieldName.String
		record.OldValue = oldValue.String
		record.NewValue = newValue.String
		record.Actor = actor.String
		record.CreatedAt = createdAt.UTC().Format(time.RFC3339)

		entries = append(entries, record)
	}

	return entries, rows.Err()
}

// Prune deletes log entries older than the given number of days.
func (r *EditLogRepository) Prune(ctx context.Context, olderThanDays int) (int, error) {
	cutoff := r.now().UTC().AddDate(0, 0, -olderThanDays)
	result, err := r.db.ExecContext(ctx, "DELETE FROM edit_log WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune edit log: %w", err)
	}

	count, _ := result.RowsAffected()
	return int(count), nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure EditLogRepository implements the interface
var _ secondary.EditLogRepository = (*EditLogRepository)(nil)

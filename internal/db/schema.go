package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Tests use it via
// GetSchemaSQL() instead of declaring their own tables, so a repository that
// references a missing column fails immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration to migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Patch buckets (active / pending / applied), one JSON document per slot
CREATE TABLE IF NOT EXISTS patch_slots (
	slot TEXT PRIMARY KEY CHECK(slot IN ('active', 'pending', 'applied')),
	payload TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Edit log (audit trail of patch store mutations)
CREATE TABLE IF NOT EXISTS edit_log (
	id TEXT PRIMARY KEY,
	entity_id INTEGER NOT NULL,
	action TEXT NOT NULL,
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	actor TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_edit_log_entity ON edit_log(entity_id);
CREATE INDEX IF NOT EXISTS idx_edit_log_created ON edit_log(created_at);
`

// InitSchema creates the schema on a fresh database and migrates an existing one.
func InitSchema(conn *sql.DB) error {
	var tableCount int
	err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(conn)
	}

	// Fresh install: create the modern schema and mark every migration applied.
	if _, err := conn.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := createVersionTable(conn); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := conn.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}

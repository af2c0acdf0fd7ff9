package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL,
    integrator TEXT NOT NULL,
    params TEXT NOT NULL,  -- JSON kinetics.Parameters

    samples INTEGER NOT NULL,
    final_time REAL,
    final_power REAL,
    peak_power REAL,
    peak_power_time REAL,
    min_power REAL,
    peak_dollars REAL,
    prompt_critical_time REAL  -- NULL when the run never reached one dollar
);

CREATE TABLE IF NOT EXISTS samples (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    idx INTEGER NOT NULL,
    time REAL NOT NULL,
    power REAL,
    dollars REAL,
    precursor REAL,
    PRIMARY KEY (run_id, idx)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InitSchema creates the tables if needed and records the schema version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

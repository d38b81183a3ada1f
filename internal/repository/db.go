package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS pipeline_run (
	id              TEXT PRIMARY KEY,
	source_path     TEXT NOT NULL,
	format          TEXT NOT NULL,
	status          TEXT NOT NULL,
	pii_found       INTEGER NOT NULL DEFAULT 0,
	categories      TEXT NOT NULL DEFAULT '',
	redaction_count INTEGER NOT NULL DEFAULT 0,
	analysis_status TEXT NOT NULL DEFAULT '',
	message         TEXT NOT NULL DEFAULT '',
	started_at      TIMESTAMP NOT NULL,
	finished_at     TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_pipeline_run_started ON pipeline_run(started_at);
`

// Open opens (creating if needed) the run-audit database at path.
// Use ":memory:" for an in-memory store.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite serializes writes; one open connection avoids
	// SQLITE_BUSY churn under concurrent pipeline runs.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

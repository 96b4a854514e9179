package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS evidence_records (
    id            TEXT PRIMARY KEY,
    case_id       TEXT NOT NULL,
    file_name     TEXT NOT NULL,
    algorithm     TEXT NOT NULL,
    sealed_digest TEXT NOT NULL,
    size_bytes    INTEGER NOT NULL,
    sealed_at     TIMESTAMP NOT NULL,
    sealer_id     TEXT NOT NULL,
    UNIQUE (case_id, file_name)
);

CREATE TABLE IF NOT EXISTS ledger_anchors (
    id                     TEXT PRIMARY KEY,
    case_id                TEXT NOT NULL,
    evidence_id            TEXT NOT NULL REFERENCES evidence_records(id),
    sequence               INTEGER NOT NULL,
    digest                 TEXT NOT NULL,
    previous_anchor_digest TEXT NOT NULL,
    anchor_digest          TEXT NOT NULL,
    anchored_at            TIMESTAMP NOT NULL,
    UNIQUE (case_id, sequence)
);

CREATE TRIGGER IF NOT EXISTS ledger_anchors_no_update
BEFORE UPDATE ON ledger_anchors
BEGIN
    SELECT RAISE(ABORT, 'ledger anchors are append-only');
END;

CREATE TRIGGER IF NOT EXISTS ledger_anchors_no_delete
BEFORE DELETE ON ledger_anchors
BEGIN
    SELECT RAISE(ABORT, 'ledger anchors are append-only');
END;

CREATE TABLE IF NOT EXISTS evidence_halts (
    case_id   TEXT PRIMARY KEY,
    reason    TEXT NOT NULL,
    halted_at TIMESTAMP NOT NULL
);
`

// OpenSQLite opens or creates a single-station evidence database at path.
// Write transactions take the database lock at BEGIN, which serializes seals.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQL{db: db, d: dialect{
		name:          "sqlite",
		positional:    questionMarks,
		isUnique:      sqliteIsUnique,
		isUnavailable: sqliteIsUnavailable,
	}}, nil
}

// Close closes the underlying handle.
func (s *SQL) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func sqliteIsUnique(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func sqliteIsUnavailable(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
}

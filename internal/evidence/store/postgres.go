package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresSchema creates the evidence tables. Anchors are insert-only; the
// deployment revokes UPDATE and DELETE on ledger_anchors from the app role.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS evidence_records (
	id            TEXT PRIMARY KEY,
	case_id       TEXT NOT NULL,
	file_name     TEXT NOT NULL,
	algorithm     TEXT NOT NULL,
	sealed_digest TEXT NOT NULL,
	size_bytes    BIGINT NOT NULL,
	sealed_at     TIMESTAMPTZ NOT NULL,
	sealer_id     TEXT NOT NULL,
	UNIQUE (case_id, file_name)
);

CREATE TABLE IF NOT EXISTS ledger_anchors (
	id                     TEXT PRIMARY KEY,
	case_id                TEXT NOT NULL,
	evidence_id            TEXT NOT NULL REFERENCES evidence_records (id),
	sequence               BIGINT NOT NULL,
	digest                 TEXT NOT NULL,
	previous_anchor_digest TEXT NOT NULL,
	anchor_digest          TEXT NOT NULL,
	anchored_at            TIMESTAMPTZ NOT NULL,
	UNIQUE (case_id, sequence)
);

CREATE TABLE IF NOT EXISTS evidence_halts (
	case_id   TEXT PRIMARY KEY,
	reason    TEXT NOT NULL,
	halted_at TIMESTAMPTZ NOT NULL
);
`

// NewPostgres returns the evidence store on a lib/pq handle.
func NewPostgres(db *sql.DB) *SQL {
	return &SQL{db: db, d: dialect{
		name:          "postgres",
		lockCase:      postgresLockCase,
		isUnique:      postgresIsUnique,
		isUnavailable: postgresIsUnavailable,
	}}
}

// MigratePostgres applies PostgresSchema.
func MigratePostgres(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("migrate evidence tables: %w", err)
	}
	return nil
}

// postgresLockCase takes a transaction-scoped advisory lock keyed by case, so
// two seals of the same case never read the same head.
func postgresLockCase(ctx context.Context, tx *sql.Tx, caseID string) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, caseID)
	return err
}

func postgresIsUnique(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func postgresIsUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 08 is connection exception; 57P0x is operator shutdown.
		return pqErr.Code.Class() == "08" || pqErr.Code == "57P01" || pqErr.Code == "57P03"
	}
	return false
}

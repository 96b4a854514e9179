package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"nyaya/internal/evidence/models"
	"nyaya/pkg/platform/sentinel"
	txcontext "nyaya/pkg/platform/tx"
)

// dialect isolates what differs between the Postgres and SQLite backends.
type dialect struct {
	name string
	// positional rewrites $N placeholders when the driver wants something else.
	positional func(query string) string
	// lockCase serializes seals of one case for the rest of tx.
	lockCase      func(ctx context.Context, tx *sql.Tx, caseID string) error
	isUnique      func(err error) bool
	isUnavailable func(err error) bool
}

var placeholder = regexp.MustCompile(`\$\d+`)

func questionMarks(query string) string {
	return placeholder.ReplaceAllString(query, "?")
}

// SQL is the database/sql evidence store shared by the Postgres and SQLite
// backends. Statements run inside the transaction carried by ctx when there
// is one (see RunInTx).
type SQL struct {
	db *sql.DB
	d  dialect
}

func (s *SQL) conn(ctx context.Context) txcontext.Conn {
	return txcontext.Or(ctx, s.db)
}

func (s *SQL) q(query string) string {
	if s.d.positional == nil {
		return query
	}
	return s.d.positional(query)
}

// DB exposes the handle for callers sharing the connection, such as the audit
// store.
func (s *SQL) DB() *sql.DB {
	return s.db
}

// RunInTx runs fn in a transaction that holds the case's seal lock. The
// transaction travels in the context passed to fn, so store calls and any
// context-aware audit write join it.
func (s *SQL) RunInTx(ctx context.Context, caseID string, fn func(ctx context.Context) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.classify(err, "begin transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if s.d.lockCase != nil {
		if err := s.d.lockCase(ctx, tx, caseID); err != nil {
			return s.classify(err, "lock case")
		}
	}
	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return s.classify(err, "commit")
	}
	committed = true
	return nil
}

func (s *SQL) CreateRecord(ctx context.Context, r *models.EvidenceRecord) error {
	_, err := s.conn(ctx).ExecContext(ctx, s.q(`
		INSERT INTO evidence_records (id, case_id, file_name, algorithm, sealed_digest, size_bytes, sealed_at, sealer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`),
		r.ID, r.CaseID, r.FileName, r.Algorithm, r.SealedDigest, r.SizeBytes, r.SealedAt.UTC(), r.SealerID,
	)
	if err != nil {
		if s.d.isUnique(err) {
			return sentinel.ErrAlreadyUsed
		}
		return s.classify(err, "insert evidence record")
	}
	return nil
}

const recordColumns = `id, case_id, file_name, algorithm, sealed_digest, size_bytes, sealed_at, sealer_id`

func scanRecord(row interface{ Scan(...any) error }) (*models.EvidenceRecord, error) {
	var r models.EvidenceRecord
	if err := row.Scan(&r.ID, &r.CaseID, &r.FileName, &r.Algorithm, &r.SealedDigest, &r.SizeBytes, &r.SealedAt, &r.SealerID); err != nil {
		return nil, err
	}
	r.SealedAt = r.SealedAt.UTC()
	return &r, nil
}

func (s *SQL) FindRecord(ctx context.Context, caseID, fileName string) (*models.EvidenceRecord, error) {
	row := s.conn(ctx).QueryRowContext(ctx, s.q(`
		SELECT `+recordColumns+` FROM evidence_records WHERE case_id = $1 AND file_name = $2`),
		caseID, fileName)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, s.classify(err, "find evidence record")
	}
	return r, nil
}

func (s *SQL) ListRecords(ctx context.Context, caseID string) ([]*models.EvidenceRecord, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, s.q(`
		SELECT `+recordColumns+` FROM evidence_records WHERE case_id = $1 ORDER BY sealed_at, id`),
		caseID)
	if err != nil {
		return nil, s.classify(err, "list evidence records")
	}
	defer rows.Close()

	var out []*models.EvidenceRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evidence record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify(err, "iterate evidence records")
	}
	return out, nil
}

const anchorColumns = `id, case_id, evidence_id, sequence, digest, previous_anchor_digest, anchor_digest, anchored_at`

func scanAnchor(row interface{ Scan(...any) error }) (*models.LedgerAnchor, error) {
	var a models.LedgerAnchor
	if err := row.Scan(&a.ID, &a.CaseID, &a.EvidenceID, &a.Sequence, &a.Digest, &a.PreviousAnchorDigest, &a.AnchorDigest, &a.Timestamp); err != nil {
		return nil, err
	}
	a.Timestamp = a.Timestamp.UTC()
	return &a, nil
}

func (s *SQL) LastAnchor(ctx context.Context, caseID string) (*models.LedgerAnchor, error) {
	row := s.conn(ctx).QueryRowContext(ctx, s.q(`
		SELECT `+anchorColumns+` FROM ledger_anchors WHERE case_id = $1 ORDER BY sequence DESC LIMIT 1`),
		caseID)
	a, err := scanAnchor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, s.classify(err, "find chain head")
	}
	return a, nil
}

// AppendAnchor inserts a only if it extends the current head. The unique
// (case_id, sequence) constraint rejects a concurrent writer that read the
// same head.
func (s *SQL) AppendAnchor(ctx context.Context, a *models.LedgerAnchor) error {
	head, err := s.LastAnchor(ctx, a.CaseID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		if a.Sequence != 1 || a.PreviousAnchorDigest != models.GenesisDigest {
			return sentinel.ErrChainMismatch
		}
	case err != nil:
		return err
	case a.Sequence != head.Sequence+1 || a.PreviousAnchorDigest != head.AnchorDigest:
		return sentinel.ErrChainMismatch
	}

	_, err = s.conn(ctx).ExecContext(ctx, s.q(`
		INSERT INTO ledger_anchors (`+anchorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`),
		a.ID, a.CaseID, a.EvidenceID, a.Sequence, a.Digest, a.PreviousAnchorDigest, a.AnchorDigest, a.Timestamp.UTC(),
	)
	if err != nil {
		if s.d.isUnique(err) {
			return sentinel.ErrChainMismatch
		}
		return s.classify(err, "append ledger anchor")
	}
	return nil
}

func (s *SQL) ListAnchors(ctx context.Context, caseID string) ([]*models.LedgerAnchor, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, s.q(`
		SELECT `+anchorColumns+` FROM ledger_anchors WHERE case_id = $1 ORDER BY sequence`),
		caseID)
	if err != nil {
		return nil, s.classify(err, "list ledger anchors")
	}
	defer rows.Close()

	var out []*models.LedgerAnchor
	for rows.Next() {
		a, err := scanAnchor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger anchor: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify(err, "iterate ledger anchors")
	}
	return out, nil
}

func (s *SQL) Halt(ctx context.Context, caseID, reason string, at time.Time) error {
	_, err := s.conn(ctx).ExecContext(ctx, s.q(`
		INSERT INTO evidence_halts (case_id, reason, halted_at) VALUES ($1, $2, $3)
		ON CONFLICT (case_id) DO NOTHING`),
		caseID, reason, at.UTC())
	if err != nil {
		return s.classify(err, "halt case")
	}
	return nil
}

func (s *SQL) HaltReason(ctx context.Context, caseID string) (string, bool, error) {
	var reason string
	err := s.conn(ctx).QueryRowContext(ctx, s.q(`SELECT reason FROM evidence_halts WHERE case_id = $1`), caseID).Scan(&reason)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.classify(err, "read halt")
	}
	return reason, true, nil
}

func (s *SQL) Resume(ctx context.Context, caseID string) error {
	res, err := s.conn(ctx).ExecContext(ctx, s.q(`DELETE FROM evidence_halts WHERE case_id = $1`), caseID)
	if err != nil {
		return s.classify(err, "resume case")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *SQL) classify(err error, op string) error {
	if s.d.isUnavailable != nil && s.d.isUnavailable(err) {
		return fmt.Errorf("%s %s: %w: %v", s.d.name, op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s %s: %w", s.d.name, op, err)
}

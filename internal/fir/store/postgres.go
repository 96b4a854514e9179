package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"nyaya/internal/fir/models"
	notificationmodels "nyaya/internal/notification/models"
	notificationstore "nyaya/internal/notification/store"
	"nyaya/internal/platform/postgres"
	"nyaya/pkg/platform/sentinel"
)

// Schema creates the e-FIR tables. Nested value objects are JSONB; fields the
// scheduler filters on are columns.
const Schema = `
CREATE TABLE IF NOT EXISTS provisional_firs (
	temp_id                 TEXT PRIMARY KEY,
	status                  TEXT NOT NULL,
	submission_time         TIMESTAMPTZ,
	expiry_time             TIMESTAMPTZ,
	filing_station_code     TEXT NOT NULL,
	correct_station_code    TEXT NOT NULL DEFAULT '',
	jurisdiction_type       TEXT NOT NULL,
	requires_physical_visit BOOLEAN NOT NULL,
	informant               JSONB NOT NULL,
	incident                JSONB NOT NULL,
	sections                JSONB NOT NULL,
	signature               JSONB,
	notifications_sent      TEXT[] NOT NULL DEFAULT '{}',
	gd_entry_number         TEXT NOT NULL DEFAULT '',
	expiration_reason       TEXT NOT NULL DEFAULT '',
	quash_reason            TEXT NOT NULL DEFAULT '',
	fir_number              TEXT NOT NULL DEFAULT '',
	created_at              TIMESTAMPTZ NOT NULL,
	updated_at              TIMESTAMPTZ NOT NULL,
	version                 BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_provisional_firs_status_expiry
	ON provisional_firs (status, expiry_time);

CREATE TABLE IF NOT EXISTS registered_firs (
	fir_number    TEXT PRIMARY KEY,
	temp_id       TEXT NOT NULL UNIQUE REFERENCES provisional_firs (temp_id),
	station_code  TEXT NOT NULL,
	registered_at TIMESTAMPTZ NOT NULL,
	payload       JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS record_sequences (
	series TEXT PRIMARY KEY,
	value  BIGINT NOT NULL
);
`

const firColumns = `temp_id, status, submission_time, expiry_time, filing_station_code,
	correct_station_code, jurisdiction_type, requires_physical_visit, informant, incident,
	sections, signature, notifications_sent, gd_entry_number, expiration_reason,
	quash_reason, fir_number, created_at, updated_at, version`

// Postgres stores e-FIRs with pgx. A Postgres bound to a transaction locks the
// rows it reads so the caller's read-modify-write is serialized per record.
type Postgres struct {
	q         postgres.Querier
	forUpdate bool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{q: pool}
}

// NewPostgresTx binds the store to tx. Reads lock the rows they return.
func NewPostgresTx(tx pgx.Tx) *Postgres {
	return &Postgres{q: tx, forUpdate: true}
}

// Migrate applies the e-FIR and notification outbox schemas.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate e-FIR schema: %w", err)
	}
	if _, err := pool.Exec(ctx, notificationstore.Schema); err != nil {
		return fmt.Errorf("migrate outbox schema: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, f *models.ProvisionalFIR) error {
	args, err := firArgs(f)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO provisional_firs (`+firColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, 1)
	`, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return classify(err, "insert e-FIR")
	}
	f.Version = 1
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, tempID string) (*models.ProvisionalFIR, error) {
	query := `SELECT ` + firColumns + ` FROM provisional_firs WHERE temp_id = $1`
	if s.forUpdate {
		query += ` FOR UPDATE`
	}
	return scanFIR(s.q.QueryRow(ctx, query, tempID))
}

// Update is a compare-and-set on (status, version).
func (s *Postgres) Update(ctx context.Context, f *models.ProvisionalFIR, expected models.Status) error {
	args, err := firArgs(f)
	if err != nil {
		return err
	}
	// created_at is immutable and is not bound; every placeholder must be
	// referenced for the statement to prepare.
	args = append(args[:createdAtArg:createdAtArg], args[createdAtArg+1], string(expected), f.Version)
	tag, err := s.q.Exec(ctx, `
		UPDATE provisional_firs SET
			status = $2, submission_time = $3, expiry_time = $4, filing_station_code = $5,
			correct_station_code = $6, jurisdiction_type = $7, requires_physical_visit = $8,
			informant = $9, incident = $10, sections = $11, signature = $12,
			notifications_sent = $13, gd_entry_number = $14, expiration_reason = $15,
			quash_reason = $16, fir_number = $17, updated_at = $18, version = version + 1
		WHERE temp_id = $1 AND status = $19 AND version = $20
	`, args...)
	if err != nil {
		return classify(err, "update e-FIR")
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrConflict
	}
	f.Version++
	return nil
}

func (s *Postgres) ListByStatus(ctx context.Context, status models.Status, limit int) ([]*models.ProvisionalFIR, error) {
	return s.list(ctx, `
		SELECT `+firColumns+` FROM provisional_firs
		WHERE status = $1
		ORDER BY expiry_time, temp_id
		LIMIT $2
	`, string(status), listLimit(limit))
}

// ListAwaitingDeadline returns pending records the deadline scheduler still
// acts on. Physical-visit records whose window has lapsed are left out.
func (s *Postgres) ListAwaitingDeadline(ctx context.Context, now time.Time, limit int) ([]*models.ProvisionalFIR, error) {
	return s.list(ctx, `
		SELECT `+firColumns+` FROM provisional_firs
		WHERE status = $1 AND NOT (requires_physical_visit AND expiry_time < $2)
		ORDER BY expiry_time, temp_id
		LIMIT $3
	`, string(models.StatusPendingSignature), now, listLimit(limit))
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]*models.ProvisionalFIR, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "list e-FIRs")
	}
	defer rows.Close()
	var out []*models.ProvisionalFIR
	for rows.Next() {
		f, err := scanFIR(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func listLimit(limit int) int {
	if limit <= 0 {
		return 1000
	}
	return limit
}

// NextSequence increments and returns the counter for series. Within a
// transaction the upsert holds the row lock until commit, so numbers are
// gap-free per committed registration.
func (s *Postgres) NextSequence(ctx context.Context, series string) (int64, error) {
	var v int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO record_sequences (series, value) VALUES ($1, 1)
		ON CONFLICT (series) DO UPDATE SET value = record_sequences.value + 1
		RETURNING value
	`, series).Scan(&v)
	if err != nil {
		return 0, classify(err, "next sequence")
	}
	return v, nil
}

func (s *Postgres) CreateRegistered(ctx context.Context, r *models.RegisteredFIR) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal registered FIR: %w", err)
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO registered_firs (fir_number, temp_id, station_code, registered_at, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, r.FIRNumber, r.TempID, r.StationCode, r.RegisteredAt, payload)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return classify(err, "insert registered FIR")
	}
	return nil
}

func (s *Postgres) FindRegistered(ctx context.Context, tempID string) (*models.RegisteredFIR, error) {
	var payload []byte
	err := s.q.QueryRow(ctx, `SELECT payload FROM registered_firs WHERE temp_id = $1`, tempID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, classify(err, "find registered FIR")
	}
	var r models.RegisteredFIR
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("unmarshal registered FIR: %w", err)
	}
	return &r, nil
}

// EnqueueNotification writes to the outbox through the same querier, so inside
// a transaction the entry commits or rolls back with the record update.
func (s *Postgres) EnqueueNotification(ctx context.Context, n *notificationmodels.Notification) error {
	return notificationstore.Enqueue(ctx, s.q, n)
}

// createdAtArg is the index of created_at in firArgs; updated_at follows it.
const createdAtArg = 17

func firArgs(f *models.ProvisionalFIR) ([]any, error) {
	informant, err := json.Marshal(f.Informant)
	if err != nil {
		return nil, fmt.Errorf("marshal informant: %w", err)
	}
	incident, err := json.Marshal(f.Incident)
	if err != nil {
		return nil, fmt.Errorf("marshal incident: %w", err)
	}
	sections, err := json.Marshal(f.Sections)
	if err != nil {
		return nil, fmt.Errorf("marshal sections: %w", err)
	}
	var signature []byte
	if f.Signature != nil {
		if signature, err = json.Marshal(f.Signature); err != nil {
			return nil, fmt.Errorf("marshal signature: %w", err)
		}
	}
	sent := make([]string, len(f.NotificationsSent))
	for i, l := range f.NotificationsSent {
		sent[i] = string(l)
	}
	return []any{
		f.TempID, string(f.Status), nullTime(f.SubmissionTime), nullTime(f.ExpiryTime),
		f.FilingStationCode, f.CorrectStationCode, string(f.JurisdictionType), f.RequiresPhysicalVisit,
		informant, incident, sections, signature, sent, f.GDEntryNumber, f.ExpirationReason,
		f.QuashReason, f.FIRNumber, f.CreatedAt, f.UpdatedAt,
	}, nil
}

func scanFIR(row pgx.Row) (*models.ProvisionalFIR, error) {
	var (
		f                                           models.ProvisionalFIR
		status, jurisdiction                        string
		submission, expiry                          *time.Time
		informant, incident, sections, signature    []byte
		sent                                        []string
	)
	err := row.Scan(&f.TempID, &status, &submission, &expiry, &f.FilingStationCode,
		&f.CorrectStationCode, &jurisdiction, &f.RequiresPhysicalVisit, &informant, &incident,
		&sections, &signature, &sent, &f.GDEntryNumber, &f.ExpirationReason,
		&f.QuashReason, &f.FIRNumber, &f.CreatedAt, &f.UpdatedAt, &f.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, classify(err, "scan e-FIR")
	}
	st, err := models.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("stored status: %w", err)
	}
	f.Status = st
	f.JurisdictionType = models.JurisdictionType(jurisdiction)
	if submission != nil {
		f.SubmissionTime = submission.UTC()
	}
	if expiry != nil {
		f.ExpiryTime = expiry.UTC()
	}
	f.CreatedAt = f.CreatedAt.UTC()
	f.UpdatedAt = f.UpdatedAt.UTC()
	if err := json.Unmarshal(informant, &f.Informant); err != nil {
		return nil, fmt.Errorf("unmarshal informant: %w", err)
	}
	if err := json.Unmarshal(incident, &f.Incident); err != nil {
		return nil, fmt.Errorf("unmarshal incident: %w", err)
	}
	if err := json.Unmarshal(sections, &f.Sections); err != nil {
		return nil, fmt.Errorf("unmarshal sections: %w", err)
	}
	if len(signature) > 0 {
		var sig models.Signature
		if err := json.Unmarshal(signature, &sig); err != nil {
			return nil, fmt.Errorf("unmarshal signature: %w", err)
		}
		f.Signature = &sig
	}
	f.NotificationsSent = make([]models.AlertLevel, len(sent))
	for i, l := range sent {
		f.NotificationsSent[i] = models.AlertLevel(l)
	}
	return &f, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// classify maps driver failures onto sentinel.ErrUnavailable when the server
// could not be reached, so services can report them as retryable.
func classify(err error, op string) error {
	if postgres.IsConnectionError(err) {
		return fmt.Errorf("%s: %w: %v", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nyaya/internal/notification/models"
	"nyaya/internal/platform/postgres"
	"nyaya/pkg/platform/sentinel"
)

// DefaultLease is how long a claimed entry stays hidden from other workers.
const DefaultLease = 30 * time.Second

// Schema creates the notification outbox. The unique dedupe key is what makes
// (record, tier) delivery at-most-once across process restarts.
const Schema = `
CREATE TABLE IF NOT EXISTS notification_outbox (
	id              UUID PRIMARY KEY,
	dedupe_key      TEXT NOT NULL UNIQUE,
	record_id       TEXT NOT NULL,
	tier            TEXT NOT NULL,
	channel         TEXT NOT NULL,
	recipient       TEXT NOT NULL,
	payload         JSONB NOT NULL,
	status          TEXT NOT NULL,
	attempts        INT NOT NULL DEFAULT 0,
	next_attempt_at TIMESTAMPTZ NOT NULL,
	last_error      TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL,
	delivered_at    TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_notification_outbox_due
	ON notification_outbox (status, next_attempt_at);
`

// Postgres is the durable outbox on pgx.
type Postgres struct {
	pool  *pgxpool.Pool
	lease time.Duration
}

func NewPostgres(pool *pgxpool.Pool, lease time.Duration) *Postgres {
	if lease <= 0 {
		lease = DefaultLease
	}
	return &Postgres{pool: pool, lease: lease}
}

// Migrate applies Schema.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate notification outbox: %w", err)
	}
	return nil
}

// Enqueue inserts n through q, which may be a transaction owned by the caller.
// Returns sentinel.ErrAlreadyUsed when the dedupe key already exists.
func Enqueue(ctx context.Context, q postgres.Querier, n *models.Notification) error {
	tag, err := q.Exec(ctx, `
		INSERT INTO notification_outbox
			(id, dedupe_key, record_id, tier, channel, recipient, payload, status, attempts, next_attempt_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10)
		ON CONFLICT (dedupe_key) DO NOTHING
	`, n.ID, n.DedupeKey, n.RecordID, n.Tier, string(n.Channel), n.Recipient, []byte(n.Payload),
		string(models.OutboxPending), n.NextAttemptAt, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *Postgres) Enqueue(ctx context.Context, n *models.Notification) error {
	return Enqueue(ctx, s.pool, n)
}

// ClaimDue leases up to limit due entries. SKIP LOCKED lets several workers
// drain the same table without handing out one entry twice.
func (s *Postgres) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*models.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE notification_outbox o
		SET next_attempt_at = $2
		FROM (
			SELECT id FROM notification_outbox
			WHERE status = $3 AND next_attempt_at <= $1
			ORDER BY created_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		) due
		WHERE o.id = due.id
		RETURNING o.id, o.dedupe_key, o.record_id, o.tier, o.channel, o.recipient, o.payload,
			o.status, o.attempts, o.next_attempt_at, o.last_error, o.created_at, o.delivered_at
	`, now, now.Add(s.lease), string(models.OutboxPending), limit)
	if err != nil {
		return nil, fmt.Errorf("claim outbox entries: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Postgres) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.update(ctx, `
		UPDATE notification_outbox
		SET status = $2, attempts = attempts + 1, delivered_at = $3, last_error = ''
		WHERE id = $1
	`, id, string(models.OutboxDelivered), at)
}

func (s *Postgres) MarkRetry(ctx context.Context, id uuid.UUID, nextAttempt time.Time, lastErr string) error {
	return s.update(ctx, `
		UPDATE notification_outbox
		SET attempts = attempts + 1, next_attempt_at = $2, last_error = $3
		WHERE id = $1
	`, id, nextAttempt, lastErr)
}

func (s *Postgres) MarkFailed(ctx context.Context, id uuid.UUID, lastErr string) error {
	return s.update(ctx, `
		UPDATE notification_outbox
		SET status = $2, attempts = attempts + 1, last_error = $3
		WHERE id = $1
	`, id, string(models.OutboxFailed), lastErr)
}

// ListByRecord returns every outbox entry for recordID ordered by creation.
func (s *Postgres) ListByRecord(ctx context.Context, recordID string) ([]*models.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, dedupe_key, record_id, tier, channel, recipient, payload,
			status, attempts, next_attempt_at, last_error, created_at, delivered_at
		FROM notification_outbox
		WHERE record_id = $1
		ORDER BY created_at
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("list outbox entries: %w", err)
	}
	defer rows.Close()
	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Postgres) update(ctx context.Context, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update outbox entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var (
		n       models.Notification
		channel string
		status  string
		payload []byte
	)
	err := row.Scan(&n.ID, &n.DedupeKey, &n.RecordID, &n.Tier, &channel, &n.Recipient, &payload,
		&status, &n.Attempts, &n.NextAttemptAt, &n.LastError, &n.CreatedAt, &n.DeliveredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan outbox entry: %w", err)
	}
	n.Channel = models.Channel(channel)
	n.Status = models.OutboxStatus(status)
	n.Payload = payload
	return &n, nil
}

package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	firservice "nyaya/internal/fir/service"
	firstore "nyaya/internal/fir/store"
	dErrors "nyaya/pkg/domain-errors"
)

const defaultFIRTxTimeout = 5 * time.Second

// firPostgresTx runs each lifecycle mutation in one pgx transaction. The
// store locks the rows it reads, so concurrent Sign and Expire on the same
// record serialize in the database.
type firPostgresTx struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func newFIRPostgresTx(pool *pgxpool.Pool) *firPostgresTx {
	return &firPostgresTx{pool: pool}
}

func (t *firPostgresTx) RunInTx(ctx context.Context, _ string, fn func(store firservice.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultFIRTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(firstore.NewPostgresTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to commit transaction")
	}
	return nil
}

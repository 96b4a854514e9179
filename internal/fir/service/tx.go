package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	dErrors "nyaya/pkg/domain-errors"
)

// StoreTx runs fn as one atomic read-modify-write on the record tempID.
// The Postgres implementation is a database transaction with row locks.
type StoreTx interface {
	RunInTx(ctx context.Context, tempID string, fn func(store Store) error) error
}

const (
	numRecordLocks   = 128
	defaultTxTimeout = 5 * time.Second
)

// recordLocks is the in-memory StoreTx. Operations on one record are
// serialized on a mutex picked by FNV-1a of its ID.
type recordLocks struct {
	locks   [numRecordLocks]sync.Mutex
	store   Store
	timeout time.Duration
}

func newRecordLocks(store Store) *recordLocks {
	return &recordLocks{store: store, timeout: defaultTxTimeout}
}

func (l *recordLocks) RunInTx(ctx context.Context, tempID string, fn func(store Store) error) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	mu := l.lockFor(tempID)
	mu.Lock()
	defer mu.Unlock()
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(l.store)
}

func (l *recordLocks) lockFor(tempID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tempID))
	return &l.locks[h.Sum32()%numRecordLocks]
}

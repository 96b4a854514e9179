package service

import (
	"context"
	"hash/fnv"
	"sync"

	dErrors "nyaya/pkg/domain-errors"
)

// StoreTx runs fn as one atomic unit for a case. store.SQL implements it with
// a database transaction.
type StoreTx interface {
	RunInTx(ctx context.Context, caseID string, fn func(ctx context.Context) error) error
}

const numCaseShards = 64

// caseLocks serializes seals of the same case within one process.
type caseLocks struct {
	shards [numCaseShards]sync.Mutex
}

func (l *caseLocks) RunInTx(ctx context.Context, caseID string, fn func(ctx context.Context) error) error {
	h := fnv.New32a()
	_, _ = h.Write([]byte(caseID))
	mu := &l.shards[h.Sum32()%numCaseShards]

	mu.Lock()
	defer mu.Unlock()
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	txcontext "onboard/pkg/platform/tx"
)

// TxStores are the stores a claim transaction may touch.
type TxStores struct {
	Claims      ClaimStore
	ReviewTasks ReviewTaskStore
	Persons     PersonStore
}

// ClaimStoreTx provides a transactional boundary for claim resolution.
// Implementations may wrap a database transaction or, in-memory, a lock
// keyed by the claim. fn must use the ctx it is given so stores joined to
// the transaction see it.
type ClaimStoreTx interface {
	RunInTx(ctx context.Context, key id.ClaimKey, fn func(ctx context.Context, stores TxStores) error) error
}

// numClaimShards spreads claim keys across independent locks so unrelated
// claims never wait on each other.
const numClaimShards = 128

// DefaultTxTimeout is the maximum duration for a claim transaction.
const DefaultTxTimeout = 5 * time.Second

// ShardedClaimTx serialises transactions on the same claim key using
// sharded mutexes and backs the in-memory stores. Writes are journaled and
// undone when fn fails, so a failed resolution leaves no person, task or
// audit row behind. Other claims may observe those writes before the undo.
type ShardedClaimTx struct {
	shards  [numClaimShards]sync.Mutex
	stores  TxStores
	timeout time.Duration
}

func NewShardedClaimTx(stores TxStores, timeout time.Duration) *ShardedClaimTx {
	return &ShardedClaimTx{stores: stores, timeout: timeout}
}

func (t *ShardedClaimTx) RunInTx(ctx context.Context, key id.ClaimKey, fn func(ctx context.Context, stores TxStores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = DefaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := selectShard(key)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	journal := &txcontext.Journal{}
	committed := false
	defer func() {
		if !committed {
			journal.Rollback()
		}
	}()

	if err := fn(txcontext.WithJournal(ctx, journal), t.stores); err != nil {
		return err
	}
	committed = true
	return nil
}

func selectShard(key id.ClaimKey) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.String()))
	return int(h.Sum32() % numClaimShards)
}

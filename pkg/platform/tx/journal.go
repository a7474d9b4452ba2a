package tx

import (
	"context"
	"sync"
)

// Journal is the in-memory stand-in for a SQL transaction. Stores record how
// to undo each write, and Rollback replays those undos newest first.
type Journal struct {
	mu   sync.Mutex
	undo []func()
}

type journalKey struct{}

func WithJournal(ctx context.Context, j *Journal) context.Context {
	if j == nil {
		return ctx
	}
	return context.WithValue(ctx, journalKey{}, j)
}

// OnRollback records undo against the journal in ctx. Outside a journaled
// unit of work the write is final and undo is discarded.
func OnRollback(ctx context.Context, undo func()) {
	j, ok := ctx.Value(journalKey{}).(*Journal)
	if !ok {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undo = append(j.undo, undo)
}

func (j *Journal) Rollback() {
	j.mu.Lock()
	undo := j.undo
	j.undo = nil
	j.mu.Unlock()

	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

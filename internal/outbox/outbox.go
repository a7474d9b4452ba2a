// Package outbox relays audit events written to the outbox table to Kafka.
//
// Events are appended in the same transaction as the registry change they
// describe. The relay later claims a batch of unpublished rows, publishes
// them keyed by aggregate so per-person order is kept, and marks them
// published in the same transaction that claimed them. A failed publish
// rolls back and the batch is retried on the next tick, so delivery is
// at-least-once.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one unpublished outbox row.
type Entry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// Store claims batches of unpublished entries. fn runs while the batch is
// locked; when it returns nil the entries are marked published.
type Store interface {
	ProcessBatch(ctx context.Context, limit int, fn func(ctx context.Context, entries []Entry) error) (int, error)
	CountUnpublished(ctx context.Context) (int, error)
}

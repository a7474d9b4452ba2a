package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/audit/store/memory"
)

func TestPublisher_DrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store, WithFlushInterval(time.Hour))

	for range 5 {
		pub.Emit(context.Background(), audit.SecurityEvent{
			Subject:  "apply-for-qts/req-1",
			Action:   audit.EventDefiniteMatchConflict,
			Severity: audit.SeverityCritical,
		})
	}
	require.NoError(t, pub.Close())

	events, err := store.ListByAction(context.Background(), audit.EventDefiniteMatchConflict)
	require.NoError(t, err)
	assert.Len(t, events, 5)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestPublisher_FlushesOnInterval(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store, WithFlushInterval(10*time.Millisecond))
	defer pub.Close()

	pub.Emit(context.Background(), audit.SecurityEvent{Subject: "s", Action: audit.EventClientAuthFailed})

	assert.Eventually(t, func() bool {
		events, _ := store.ListAll(context.Background())
		return len(events) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestBacklog_EvictsOldestWhenFull(t *testing.T) {
	b := NewBacklog(2)
	b.Push(audit.SecurityEvent{Subject: "a"})
	b.Push(audit.SecurityEvent{Subject: "b"})
	b.Push(audit.SecurityEvent{Subject: "c"})

	assert.Equal(t, int64(1), b.Evicted())
	batch := b.Take(10)
	require.Len(t, batch, 2)
	assert.Equal(t, "b", batch[0].Subject)
	assert.Equal(t, "c", batch[1].Subject)
	assert.Equal(t, 0, b.Len())
}

func TestBacklog_KeepsCriticalEventsOverRoutineOnes(t *testing.T) {
	b := NewBacklog(2)
	b.Push(audit.SecurityEvent{Subject: "conflict", Severity: audit.SeverityCritical})
	b.Push(audit.SecurityEvent{Subject: "routine", Severity: audit.SeverityInfo})
	b.Push(audit.SecurityEvent{Subject: "later", Severity: audit.SeverityWarning})

	batch := b.Take(10)
	require.Len(t, batch, 2)
	assert.Equal(t, "conflict", batch[0].Subject)
	assert.Equal(t, "later", batch[1].Subject)
}

func TestBacklog_EvictsCriticalWhenNothingElseRemains(t *testing.T) {
	b := NewBacklog(1)
	b.Push(audit.SecurityEvent{Subject: "first", Severity: audit.SeverityCritical})
	b.Push(audit.SecurityEvent{Subject: "second", Severity: audit.SeverityCritical})

	batch := b.Take(1)
	require.Len(t, batch, 1)
	assert.Equal(t, "second", batch[0].Subject)
	assert.Equal(t, int64(1), b.Evicted())
}

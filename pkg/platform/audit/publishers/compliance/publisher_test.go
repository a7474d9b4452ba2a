package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("disk full") }

func TestPublisher_Emit(t *testing.T) {
	store := memory.NewInMemoryStore()
	fixed := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	pub := New(store, WithClock(func() time.Time { return fixed }))

	err := pub.Emit(context.Background(), audit.ComplianceEvent{
		Subject:  "apply-for-qts/req-1",
		Action:   audit.EventClaimCompleted,
		PersonID: "f1a1d8a5-0b4a-4b43-9f71-3d7d0d2b3c11",
	})
	require.NoError(t, err)

	events, err := store.ListBySubject(context.Background(), "apply-for-qts/req-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.Equal(t, fixed, events[0].Timestamp)
}

func TestPublisher_EmitRequiresSubjectAndAction(t *testing.T) {
	pub := New(memory.NewInMemoryStore())

	require.Error(t, pub.Emit(context.Background(), audit.ComplianceEvent{Action: audit.EventPersonCreated}))
	require.Error(t, pub.Emit(context.Background(), audit.ComplianceEvent{Subject: "x"}))
}

func TestPublisher_EmitRejectsNonComplianceAction(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store)

	err := pub.Emit(context.Background(), audit.ComplianceEvent{
		Subject: "apply-for-qts/req-1",
		Action:  audit.EventClaimSubmitted,
	})
	require.Error(t, err)

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPublisher_FailsClosed(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	pub := New(failingStore{}, WithMetrics(metrics))

	err := pub.Emit(context.Background(), audit.ComplianceEvent{
		Subject: "apply-for-qts/req-1",
		Action:  audit.EventPersonCreated,
	})
	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PersistFailures))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.EventsEmitted))
}

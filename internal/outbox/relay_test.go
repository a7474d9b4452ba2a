package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"onboard/internal/outbox/mocks"
	"onboard/internal/platform/kafka"
)

//go:generate mockgen -source=relay.go -destination=mocks/outbox-mocks.go -package=mocks Publisher

// memoryStore mimics the claim-then-mark behaviour of PostgresStore.
type memoryStore struct {
	mu        sync.Mutex
	entries   []Entry
	published map[uuid.UUID]bool
}

func (m *memoryStore) add(aggregateID, eventType string) Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := Entry{
		ID:            uuid.New(),
		AggregateType: "person",
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       []byte(`{"action":"` + eventType + `"}`),
		CreatedAt:     time.Now(),
	}
	m.entries = append(m.entries, e)
	return e
}

func (m *memoryStore) ProcessBatch(ctx context.Context, limit int, fn func(context.Context, []Entry) error) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var batch []Entry
	for _, e := range m.entries {
		if !m.published[e.ID] && len(batch) < limit {
			batch = append(batch, e)
		}
	}
	if len(batch) == 0 {
		return 0, nil
	}
	if err := fn(ctx, batch); err != nil {
		return 0, err
	}
	for _, e := range batch {
		m.published[e.ID] = true
	}
	return len(batch), nil
}

func (m *memoryStore) CountUnpublished(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries) - len(m.published), nil
}

type RelaySuite struct {
	suite.Suite
	ctx       context.Context
	store     *memoryStore
	publisher *mocks.MockPublisher
	metrics   *Metrics
	relay     *Relay
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = &memoryStore{published: map[uuid.UUID]bool{}}
	s.publisher = mocks.NewMockPublisher(gomock.NewController(s.T()))
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.relay = NewRelay(s.store, s.publisher, "onboard.audit",
		WithBatchSize(2),
		WithInterval(10*time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
}

func (s *RelaySuite) TestRelayOnceMapsEntriesToMessages() {
	e := s.store.add("person-1", "person_created")

	s.publisher.EXPECT().Publish(gomock.Any(), []kafka.Message{{
		Topic: "onboard.audit",
		Key:   []byte("person-1"),
		Value: e.Payload,
		Headers: map[string]string{
			"event_id":       e.ID.String(),
			"event_type":     "person_created",
			"aggregate_type": "person",
		},
	}}).Return(nil)

	n, err := s.relay.RelayOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.Published))

	backlog, err := s.store.CountUnpublished(s.ctx)
	s.Require().NoError(err)
	s.Zero(backlog)
}

func (s *RelaySuite) TestFailedPublishLeavesEntriesForRetry() {
	s.store.add("person-1", "person_created")
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	_, err := s.relay.RelayOnce(s.ctx)
	s.Require().Error(err)

	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	n, err := s.relay.RelayOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *RelaySuite) TestEmptyOutboxPublishesNothing() {
	n, err := s.relay.RelayOnce(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *RelaySuite) TestDrainPublishesFullBatchesUntilEmpty() {
	for range 5 {
		s.store.add("person-1", "claim_completed")
	}
	var sizes []int
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs []kafka.Message) error {
			sizes = append(sizes, len(msgs))
			return nil
		}).Times(3)

	s.relay.drain(s.ctx)

	s.Equal([]int{2, 2, 1}, sizes)
	s.Equal(float64(0), promtestutil.ToFloat64(s.metrics.Backlog))
}

func (s *RelaySuite) TestDrainRecordsFailure() {
	s.store.add("person-1", "claim_completed")
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	s.relay.drain(s.ctx)

	s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.Failures))
	s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.Backlog))
}

func (s *RelaySuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(s.ctx)
	s.store.add("person-1", "person_created")
	published := make(chan struct{})
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, []kafka.Message) error {
			close(published)
			return nil
		})

	done := make(chan error, 1)
	go func() { done <- s.relay.Run(ctx) }()

	select {
	case <-published:
	case <-time.After(2 * time.Second):
		s.FailNow("relay did not publish")
	}
	cancel()
	s.ErrorIs(<-done, context.Canceled)
}

func (s *RelaySuite) TestHealthDegradesAfterRepeatedFailures() {
	s.store.add("person-1", "claim_completed")
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down")).Times(failedDrainsToOpen)

	for range failedDrainsToOpen - 1 {
		s.relay.drain(s.ctx)
		s.NoError(s.relay.Health(s.ctx))
	}
	s.relay.drain(s.ctx)
	s.ErrorIs(s.relay.Health(s.ctx), ErrRelayDegraded)

	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	s.relay.drain(s.ctx)
	s.NoError(s.relay.Health(s.ctx))
}

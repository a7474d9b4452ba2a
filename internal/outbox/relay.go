package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"onboard/internal/platform/kafka"
	"onboard/pkg/platform/circuit"
)

const (
	defaultBatchSize = 100
	defaultInterval  = 2 * time.Second
	// failedDrainsToOpen consecutive failed drains mark the relay unhealthy.
	failedDrainsToOpen = 3
)

// ErrRelayDegraded is reported by Health while publishing keeps failing.
var ErrRelayDegraded = errors.New("outbox relay cannot reach the broker")

// Publisher writes messages to the broker and returns once they are acked.
type Publisher interface {
	Publish(ctx context.Context, msgs []kafka.Message) error
}

// Relay moves outbox entries to a Kafka topic.
type Relay struct {
	store     Store
	publisher Publisher
	topic     string
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
	metrics   *Metrics
	breaker   *circuit.Breaker
}

type Option func(*Relay)

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

func NewRelay(store Store, publisher Publisher, topic string, opts ...Option) *Relay {
	r := &Relay{
		store:     store,
		publisher: publisher,
		topic:     topic,
		batchSize: defaultBatchSize,
		interval:  defaultInterval,
		logger:    slog.Default(),
		breaker:   circuit.New("outbox-relay", circuit.WithFailureThreshold(failedDrainsToOpen), circuit.WithSuccessThreshold(1)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays on every tick until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "outbox relay started", "topic", r.topic, "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "outbox relay stopped")
			return ctx.Err()
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

// Health fails while the breaker around publishing is open.
func (r *Relay) Health(context.Context) error {
	if r.breaker.IsOpen() {
		return ErrRelayDegraded
	}
	return nil
}

// drain publishes full batches until the backlog is empty or a batch fails.
func (r *Relay) drain(ctx context.Context) {
	for {
		n, err := r.RelayOnce(ctx)
		if err != nil {
			r.metrics.IncFailures()
			r.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
			if _, change := r.breaker.RecordFailure(); change.Opened {
				r.logger.ErrorContext(ctx, "outbox relay circuit opened", "topic", r.topic)
			}
			break
		}
		if _, change := r.breaker.RecordSuccess(); change.Closed {
			r.logger.InfoContext(ctx, "outbox relay circuit closed", "topic", r.topic)
		}
		if n < r.batchSize {
			break
		}
	}

	backlog, err := r.store.CountUnpublished(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to count outbox backlog", "error", err)
		return
	}
	r.metrics.SetBacklog(backlog)
}

// RelayOnce publishes at most one batch and returns how many entries it
// published.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	n, err := r.store.ProcessBatch(ctx, r.batchSize, func(ctx context.Context, entries []Entry) error {
		msgs := make([]kafka.Message, len(entries))
		for i, e := range entries {
			msgs[i] = r.toMessage(e)
		}
		return r.publisher.Publish(ctx, msgs)
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.metrics.AddPublished(n)
		r.logger.DebugContext(ctx, "relayed outbox batch", "count", n)
	}
	return n, nil
}

func (r *Relay) toMessage(e Entry) kafka.Message {
	return kafka.Message{
		Topic: r.topic,
		Key:   []byte(e.AggregateID),
		Value: e.Payload,
		Headers: map[string]string{
			"event_id":       e.ID.String(),
			"event_type":     e.EventType,
			"aggregate_type": e.AggregateType,
		},
	}
}

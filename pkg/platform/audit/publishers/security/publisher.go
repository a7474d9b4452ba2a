package security

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "onboard/pkg/platform/audit"
)

const (
	defaultFlushInterval = time.Second
	defaultBatchSize     = 100
)

// Publisher buffers security events and flushes them to the store in the
// background. Emit never blocks the request path; when the buffer is full
// routine events are dropped before critical ones.
type Publisher struct {
	store         audit.Store
	buffer        *Backlog
	logger        *slog.Logger
	flushInterval time.Duration
	batchSize     int

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func WithFlushInterval(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.flushInterval = d
		}
	}
}

func WithBufferCapacity(n int) Option {
	return func(p *Publisher) { p.buffer = NewBacklog(n) }
}

// New creates a publisher and starts its flush loop. Call Close to drain.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:         store,
		buffer:        NewBacklog(0),
		flushInterval: defaultFlushInterval,
		batchSize:     defaultBatchSize,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.run()
	return p
}

// Emit enqueues a security event.
func (p *Publisher) Emit(_ context.Context, event audit.SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	p.buffer.Push(event)
}

// Dropped reports how many events were evicted from a full buffer.
func (p *Publisher) Dropped() int64 {
	return p.buffer.Evicted()
}

func (p *Publisher) run() {
	defer close(p.done)
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			p.flushAll()
			return
		case <-ticker.C:
			p.flushAll()
		}
	}
}

func (p *Publisher) flushAll() {
	ctx := context.Background()
	for {
		batch := p.buffer.Take(p.batchSize)
		if len(batch) == 0 {
			return
		}
		for _, event := range batch {
			if err := p.store.Append(ctx, event.ToEvent()); err != nil && p.logger != nil {
				p.logger.ErrorContext(ctx, "failed to persist security audit event",
					"action", event.Action,
					"subject", event.Subject,
					"error", err,
				)
			}
		}
	}
}

// Close stops the flush loop after draining buffered events.
func (p *Publisher) Close() error {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
	return nil
}

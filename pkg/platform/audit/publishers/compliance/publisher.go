// Package compliance writes registry-change audit events synchronously.
// A failed write is returned to the caller, which aborts its transaction:
// no person record or completed claim commits without its audit row.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	audit "onboard/pkg/platform/audit"
)

type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// WithClock stamps events that arrive without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event audit.ComplianceEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}

	started := time.Now()
	err := p.store.Append(ctx, event.ToEvent())
	if err != nil {
		p.metrics.IncPersistFailures()
		p.logFailure(ctx, event, err)
		return fmt.Errorf("persist %s audit event: %w", event.Action, err)
	}
	p.metrics.ObservePersistDuration(time.Since(started).Seconds())
	p.metrics.IncEventsEmitted()
	return nil
}

func (p *Publisher) logFailure(ctx context.Context, event audit.ComplianceEvent, err error) {
	if p.logger == nil {
		return
	}
	p.logger.ErrorContext(ctx, "compliance audit write failed",
		"action", event.Action,
		"subject", event.Subject,
		"client_id", event.ClientID,
		"error", err,
	)
}

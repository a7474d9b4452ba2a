// Package ops records routine activity best-effort: failures are logged and
// counted but never surface to the caller.
package ops

import (
	"context"
	"log/slog"
	"time"

	audit "onboard/pkg/platform/audit"
)

type Tracker struct {
	store   audit.Store
	sampler *Sampler
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Tracker)

func WithSampler(s *Sampler) Option {
	return func(t *Tracker) { t.sampler = s }
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

func New(store audit.Store, opts ...Option) *Tracker {
	t := &Tracker{store: store, sampler: NewSampler(1, nil)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track persists event if it survives sampling.
func (t *Tracker) Track(ctx context.Context, event audit.OpsEvent) {
	if !t.sampler.ShouldSample(string(event.Action)) {
		t.metrics.IncSampled()
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := t.store.Append(ctx, event.ToEvent()); err != nil {
		t.metrics.IncPersistFailures()
		if t.logger != nil {
			t.logger.WarnContext(ctx, "failed to track ops event",
				"action", event.Action,
				"error", err,
			)
		}
		return
	}
	t.metrics.IncTracked()
}

package security

import (
	"sync"

	audit "onboard/pkg/platform/audit"
)

const defaultBacklogCapacity = 4096

// Backlog holds security events waiting to be persisted. When it is full
// the oldest non-critical event makes room; critical events are only
// evicted once nothing else is left.
type Backlog struct {
	mu      sync.Mutex
	events  []audit.SecurityEvent
	limit   int
	evicted int64
}

func NewBacklog(limit int) *Backlog {
	if limit <= 0 {
		limit = defaultBacklogCapacity
	}
	return &Backlog{limit: limit, events: make([]audit.SecurityEvent, 0, min(limit, 64))}
}

func (b *Backlog) Push(event audit.SecurityEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.events) >= b.limit {
		b.events = evictOne(b.events)
		b.evicted++
	}
	b.events = append(b.events, event)
}

func evictOne(events []audit.SecurityEvent) []audit.SecurityEvent {
	victim := 0
	for i, e := range events {
		if e.Severity != audit.SeverityCritical {
			victim = i
			break
		}
	}
	return append(events[:victim], events[victim+1:]...)
}

// Take removes and returns up to n events in arrival order.
func (b *Backlog) Take(n int) []audit.SecurityEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n <= 0 || len(b.events) == 0 {
		return nil
	}
	n = min(n, len(b.events))
	out := make([]audit.SecurityEvent, n)
	copy(out, b.events[:n])
	b.events = append(b.events[:0], b.events[n:]...)
	return out
}

func (b *Backlog) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Evicted is the number of events discarded because the backlog was full.
func (b *Backlog) Evicted() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.evicted
}

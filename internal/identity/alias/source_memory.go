package alias

import (
	"context"
	"slices"
	"sync"
)

// MemorySource serves a synonyms table held in memory.
type MemorySource struct {
	mu    sync.RWMutex
	table map[string][]string
}

// NewMemorySource builds a source from seed entries.
func NewMemorySource(entries []SeedEntry) *MemorySource {
	return &MemorySource{table: Expand(entries)}
}

func (s *MemorySource) Synonyms(_ context.Context, name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.table[name]...), nil
}

func (s *MemorySource) Referrers(_ context.Context, name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for owner, synonyms := range s.table {
		if slices.Contains(synonyms, name) {
			out = append(out, owner)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Replace swaps the whole table.
func (s *MemorySource) Replace(_ context.Context, entries []SeedEntry) error {
	table := Expand(entries)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table
	return nil
}

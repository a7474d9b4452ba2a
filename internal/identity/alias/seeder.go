package alias

import (
	"context"
	"fmt"
	"log/slog"
)

// Writer replaces the stored synonyms table.
type Writer interface {
	Replace(ctx context.Context, entries []SeedEntry) error
}

// Invalidator drops cached lookups after the table changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Seeder reloads the synonyms table from the fixture file.
type Seeder struct {
	path        string
	writer      Writer
	invalidator Invalidator
	logger      *slog.Logger
}

func NewSeeder(path string, writer Writer, invalidator Invalidator, logger *slog.Logger) *Seeder {
	return &Seeder{path: path, writer: writer, invalidator: invalidator, logger: logger}
}

// Reload reads the fixture, replaces the table and clears the cache.
// It returns the number of names loaded.
func (s *Seeder) Reload(ctx context.Context) (int, error) {
	if s.path == "" {
		return 0, fmt.Errorf("no alias file configured")
	}
	entries, err := LoadSeedFile(s.path)
	if err != nil {
		return 0, err
	}
	if err := s.writer.Replace(ctx, entries); err != nil {
		return 0, fmt.Errorf("replace aliases: %w", err)
	}
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "alias cache invalidation failed", "error", err)
		}
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "aliases reloaded", "names", len(entries), "path", s.path)
	}
	return len(entries), nil
}

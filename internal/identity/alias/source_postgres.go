package alias

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	txcontext "onboard/pkg/platform/tx"
)

// PostgresSource reads the name_synonyms table.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Synonyms(ctx context.Context, name string) ([]string, error) {
	return s.names(ctx, `SELECT synonym FROM name_synonyms WHERE name = $1 ORDER BY synonym`, name)
}

func (s *PostgresSource) Referrers(ctx context.Context, name string) ([]string, error) {
	return s.names(ctx, `SELECT name FROM name_synonyms WHERE synonym = $1 ORDER BY name`, name)
}

func (s *PostgresSource) names(ctx context.Context, stmt, arg string) ([]string, error) {
	rows, err := txcontext.Use(ctx, s.db).QueryContext(ctx, stmt, arg)
	if err != nil {
		return nil, fmt.Errorf("query synonyms: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan synonym: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate synonyms: %w", err)
	}
	return out, nil
}

// Replace rewrites the whole table in one transaction.
func (s *PostgresSource) Replace(ctx context.Context, entries []SeedEntry) error {
	table := Expand(entries)
	names := make([]string, 0, len(table))
	synonyms := make([]string, 0, len(table))
	for name, list := range table {
		for _, synonym := range list {
			names = append(names, name)
			synonyms = append(synonyms, synonym)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin alias replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM name_synonyms`); err != nil {
		return fmt.Errorf("clear synonyms: %w", err)
	}
	if len(names) > 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO name_synonyms (name, synonym)
			SELECT * FROM unnest($1::text[], $2::text[])
		`, pq.Array(names), pq.Array(synonyms))
		if err != nil {
			return fmt.Errorf("insert synonyms: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit alias replace: %w", err)
	}
	return nil
}

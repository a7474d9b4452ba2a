// Package alias decides whether two first names denote the same given name,
// either literally or through the stored synonyms table.
//
// The table is read-only from the resolver's point of view and is consulted
// in both directions. Synonymy is not treated as transitive: if "Ann" lists
// "Anne" and "Anne" lists "Annie", "Ann" and "Annie" only match when one of
// them lists the other.
package alias

import (
	"context"
	"fmt"
	"slices"

	"onboard/internal/identity/models"
	"onboard/internal/identity/normalize"
)

// Source reads the synonyms table. Synonyms follows a name's own row;
// Referrers finds the names whose rows list it. Both take and return
// normalised names.
type Source interface {
	Synonyms(ctx context.Context, name string) ([]string, error)
	Referrers(ctx context.Context, name string) ([]string, error)
}

// Resolver classifies first-name comparisons.
type Resolver struct {
	source Source
}

func NewResolver(source Source) *Resolver {
	return &Resolver{source: source}
}

// IsFirstNameMatch compares a claim's first name with a record's. It returns
// AttributeFirstName for a literal match, AttributeFirstNameAlias for a match
// through the synonyms table, and ok=false otherwise. Exactly one
// classification is produced per comparison.
func (r *Resolver) IsFirstNameMatch(ctx context.Context, claimFirst, recordFirst string) (models.AttributeType, bool, error) {
	claim := normalize.Text(claimFirst)
	record := normalize.Text(recordFirst)
	if claim == "" || record == "" {
		return 0, false, nil
	}
	if claim == record {
		return models.AttributeFirstName, true, nil
	}

	forward, err := r.source.Synonyms(ctx, claim)
	if err != nil {
		return 0, false, fmt.Errorf("lookup synonyms of claim first name: %w", err)
	}
	if containsNormalized(forward, record) {
		return models.AttributeFirstNameAlias, true, nil
	}

	reverse, err := r.source.Synonyms(ctx, record)
	if err != nil {
		return 0, false, fmt.Errorf("lookup synonyms of record first name: %w", err)
	}
	if containsNormalized(reverse, claim) {
		return models.AttributeFirstNameAlias, true, nil
	}
	return 0, false, nil
}

// Variants returns the normalised first name followed by every name
// IsFirstNameMatch would accept for it, deduplicated: its own synonyms, then
// the names that list it. Candidate lookups match record first names against
// this set, so a row stored in one direction only still finds the record.
func (r *Resolver) Variants(ctx context.Context, firstName string) ([]string, error) {
	name := normalize.Text(firstName)
	if name == "" {
		return nil, nil
	}
	synonyms, err := r.source.Synonyms(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup synonyms: %w", err)
	}
	referrers, err := r.source.Referrers(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup names listing %q: %w", name, err)
	}
	out := []string{name}
	for _, s := range slices.Concat(synonyms, referrers) {
		n := normalize.Text(s)
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out, nil
}

func containsNormalized(names []string, target string) bool {
	for _, n := range names {
		if normalize.Text(n) == target {
			return true
		}
	}
	return false
}

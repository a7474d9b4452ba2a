package matching

import (
	"cmp"
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"onboard/internal/identity/matching/metrics"
	"onboard/internal/identity/models"
	"onboard/internal/identity/query"
	id "onboard/pkg/domain"
)

const (
	sourceEmail        = "email"
	sourceNINO         = "national_insurance_number"
	sourceDemographics = "demographics"
)

// Registry is the read side of the person registry. Every method returns
// active records only.
type Registry interface {
	FindByEmail(ctx context.Context, email string) ([]*models.PersonRecord, error)
	// FindByNationalInsuranceNumber matches the person's own number and the
	// numbers on its employment records.
	FindByNationalInsuranceNumber(ctx context.Context, nino string) ([]*models.PersonRecord, error)
	FindByDemographics(ctx context.Context, filter query.Filter) ([]*models.PersonRecord, error)
}

// NameResolver classifies first-name comparisons and expands a first name to
// its stored synonyms.
type NameResolver interface {
	IsFirstNameMatch(ctx context.Context, claimFirst, recordFirst string) (models.AttributeType, bool, error)
	Variants(ctx context.Context, firstName string) ([]string, error)
}

// Locator finds the records worth evaluating against a claim.
type Locator struct {
	registry Registry
	names    NameResolver
	metrics  *metrics.Metrics
}

func NewLocator(registry Registry, names NameResolver, m *metrics.Metrics) *Locator {
	return &Locator{registry: registry, names: names, metrics: m}
}

// FindCandidates returns every active record that shares an email address or
// a national insurance number with the claim, or agrees with it on at least
// three of first name (literal or alias), middle name, last name and date of
// birth. The three lookups run concurrently; the union is returned once per
// person in registry order. Registry errors are returned unchanged so the
// caller can retry.
func (l *Locator) FindCandidates(ctx context.Context, claim models.IdentityClaim) ([]*models.PersonRecord, error) {
	g, ctx := errgroup.WithContext(ctx)

	var byEmail, byNINO, byDemographics []*models.PersonRecord

	if claim.HasEmailAddress() {
		g.Go(func() error {
			start := time.Now()
			found, err := l.registry.FindByEmail(ctx, claim.EmailAddress)
			l.metrics.ObserveLookupLatency(sourceEmail, time.Since(start))
			if err != nil {
				return err
			}
			byEmail = found
			return nil
		})
	}

	if claim.HasNationalInsuranceNumber() {
		g.Go(func() error {
			start := time.Now()
			found, err := l.registry.FindByNationalInsuranceNumber(ctx, claim.NationalInsuranceNumber)
			l.metrics.ObserveLookupLatency(sourceNINO, time.Since(start))
			if err != nil {
				return err
			}
			byNINO = found
			return nil
		})
	}

	g.Go(func() error {
		start := time.Now()
		defer func() { l.metrics.ObserveLookupLatency(sourceDemographics, time.Since(start)) }()

		firstNames, err := l.names.Variants(ctx, claim.FirstName)
		if err != nil {
			return err
		}
		filter, ok := query.Demographics(firstNames, claim.MiddleName, claim.LastName, claim.DateOfBirth)
		if !ok {
			return nil
		}
		found, err := l.registry.FindByDemographics(ctx, filter)
		if err != nil {
			return err
		}
		byDemographics = found
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return union(byEmail, byNINO, byDemographics), nil
}

// union merges lookup results by person id and sorts them into registry
// order: reference number, then id.
func union(sets ...[]*models.PersonRecord) []*models.PersonRecord {
	seen := make(map[id.PersonID]struct{})
	var out []*models.PersonRecord
	for _, set := range sets {
		for _, p := range set {
			if p == nil || !p.IsActive() {
				continue
			}
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}
	slices.SortFunc(out, registryOrder)
	return out
}

func registryOrder(a, b *models.PersonRecord) int {
	return cmp.Or(
		cmp.Compare(a.ReferenceNumber, b.ReferenceNumber),
		cmp.Compare(a.ID.String(), b.ID.String()),
	)
}

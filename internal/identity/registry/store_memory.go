// Package registry stores person records and answers candidate lookups.
// Lookups never return merged records, and results are in registry order
// (the order records were created).
package registry

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"onboard/internal/identity/models"
	"onboard/internal/identity/normalize"
	"onboard/internal/identity/query"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
	txcontext "onboard/pkg/platform/tx"
)

const firstReferenceNumber = 1000000

// InMemoryStore is a registry held in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	order   []id.PersonID
	persons map[id.PersonID]*models.PersonRecord
	nextRef int
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		persons: make(map[id.PersonID]*models.PersonRecord),
		nextRef: firstReferenceNumber,
	}
}

func (s *InMemoryStore) Create(ctx context.Context, p *models.PersonRecord) error {
	if p == nil {
		return fmt.Errorf("person record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.persons[p.ID]; exists {
		return fmt.Errorf("person %s: %w", p.ID, sentinel.ErrConflict)
	}
	for _, existing := range s.persons {
		if existing.ReferenceNumber == p.ReferenceNumber {
			return fmt.Errorf("reference number %s: %w", p.ReferenceNumber, sentinel.ErrConflict)
		}
	}
	s.persons[p.ID] = clonePerson(p)
	s.order = append(s.order, p.ID)
	personID := p.ID
	txcontext.OnRollback(ctx, func() { s.remove(personID) })
	return nil
}

func (s *InMemoryStore) remove(personID id.PersonID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.persons, personID)
	s.order = slices.DeleteFunc(s.order, func(p id.PersonID) bool { return p == personID })
}

func (s *InMemoryStore) FindByID(_ context.Context, personID id.PersonID) (*models.PersonRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[personID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clonePerson(p), nil
}

func (s *InMemoryStore) NextReferenceNumber(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := s.nextRef
	s.nextRef++
	return formatReference(ref), nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) ([]*models.PersonRecord, error) {
	if !normalize.Supplied(email) {
		return nil, nil
	}
	return s.find(query.Eq(query.FieldEmailAddress, email)), nil
}

func (s *InMemoryStore) FindByNationalInsuranceNumber(_ context.Context, nino string) ([]*models.PersonRecord, error) {
	if normalize.NationalInsuranceNumber(nino) == "" {
		return nil, nil
	}
	return s.find(query.Eq(query.FieldNationalInsuranceNumber, nino)), nil
}

func (s *InMemoryStore) FindByDemographics(_ context.Context, filter query.Filter) ([]*models.PersonRecord, error) {
	if filter.IsEmpty() {
		return nil, nil
	}
	return s.find(filter), nil
}

func (s *InMemoryStore) find(filter query.Filter) []*models.PersonRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.PersonRecord
	for _, personID := range s.order {
		p := s.persons[personID]
		if p.IsActive() && filter.Matches(p) {
			out = append(out, clonePerson(p))
		}
	}
	return out
}

func clonePerson(p *models.PersonRecord) *models.PersonRecord {
	c := *p
	c.EmploymentRecords = append([]models.EmploymentRecord(nil), p.EmploymentRecords...)
	return &c
}

func formatReference(n int) string {
	return fmt.Sprintf("%07d", n)
}

package store

import (
	"context"
	"slices"
	"sync"
	"time"

	identity "onboard/internal/identity/models"
	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
	txcontext "onboard/pkg/platform/tx"
)

// InMemoryClaimStore keeps claims in a map keyed by claim key. Callers get
// copies, and writes made under a tx.Journal are undone on rollback. Row
// locking is the job of the sharded transaction, so FindByKeyForUpdate is a
// plain read.
type InMemoryClaimStore struct {
	mu     sync.RWMutex
	claims map[id.ClaimKey]*models.Claim
}

func NewInMemoryClaimStore() *InMemoryClaimStore {
	return &InMemoryClaimStore{claims: make(map[id.ClaimKey]*models.Claim)}
}

func (s *InMemoryClaimStore) Create(ctx context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[claim.Key]; ok {
		return sentinel.ErrConflict
	}
	s.claims[claim.Key] = cloneClaim(claim)
	key := claim.Key
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.claims, key)
	})
	return nil
}

func (s *InMemoryClaimStore) FindByKey(_ context.Context, key id.ClaimKey) (*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	claim, ok := s.claims[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneClaim(claim), nil
}

func (s *InMemoryClaimStore) FindByKeyForUpdate(ctx context.Context, key id.ClaimKey) (*models.Claim, error) {
	return s.FindByKey(ctx, key)
}

func (s *InMemoryClaimStore) Update(ctx context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, ok := s.claims[claim.Key]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.claims[claim.Key] = cloneClaim(claim)
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.claims[previous.Key] = previous
	})
	return nil
}

func cloneClaim(c *models.Claim) *models.Claim {
	out := *c
	if c.MatchResult != nil {
		r := cloneResult(*c.MatchResult)
		out.MatchResult = &r
	}
	if c.ResolvedPersonID != nil {
		p := *c.ResolvedPersonID
		out.ResolvedPersonID = &p
	}
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

func cloneResult(r identity.MatchResult) identity.MatchResult {
	r.PotentialMatchesPersonIDs = slices.Clone(r.PotentialMatchesPersonIDs)
	r.ConflictingPersonIDs = slices.Clone(r.ConflictingPersonIDs)
	r.Candidates = slices.Clone(r.Candidates)
	return r
}

// InMemoryReviewTaskStore keeps review tasks in creation order.
type InMemoryReviewTaskStore struct {
	mu    sync.RWMutex
	tasks []*models.ReviewTask
}

func NewInMemoryReviewTaskStore() *InMemoryReviewTaskStore {
	return &InMemoryReviewTaskStore{}
}

func (s *InMemoryReviewTaskStore) Create(ctx context.Context, task *models.ReviewTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == task.ID {
			return sentinel.ErrConflict
		}
		if t.ClaimKey == task.ClaimKey && t.Kind == task.Kind && t.IsOpen() {
			return sentinel.ErrConflict
		}
	}
	s.tasks = append(s.tasks, cloneTask(task))
	taskID := task.ID
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.tasks = slices.DeleteFunc(s.tasks, func(t *models.ReviewTask) bool { return t.ID == taskID })
	})
	return nil
}

func (s *InMemoryReviewTaskStore) FindOpen(_ context.Context, key id.ClaimKey, kind models.ReviewTaskKind) (*models.ReviewTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ClaimKey == key && t.Kind == kind && t.IsOpen() {
			return cloneTask(t), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryReviewTaskStore) ListByClaim(_ context.Context, key id.ClaimKey) ([]*models.ReviewTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ReviewTask
	for _, t := range s.tasks {
		if t.ClaimKey == key {
			out = append(out, cloneTask(t))
		}
	}
	return out, nil
}

// ListOpen returns every open task of kind, oldest first.
func (s *InMemoryReviewTaskStore) ListOpen(_ context.Context, kind models.ReviewTaskKind) ([]*models.ReviewTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ReviewTask
	for _, t := range s.tasks {
		if t.Kind == kind && t.IsOpen() {
			out = append(out, cloneTask(t))
		}
	}
	return out, nil
}

func (s *InMemoryReviewTaskStore) Close(ctx context.Context, taskID id.ReviewTaskID, closedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID != taskID {
			continue
		}
		if !t.IsOpen() {
			return sentinel.ErrInvalidState
		}
		t.Status = models.ReviewTaskClosed
		t.ClosedAt = &closedAt
		txcontext.OnRollback(ctx, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			t.Status = models.ReviewTaskOpen
			t.ClosedAt = nil
		})
		return nil
	}
	return sentinel.ErrNotFound
}

func cloneTask(t *models.ReviewTask) *models.ReviewTask {
	out := *t
	out.PersonIDs = append([]id.PersonID(nil), t.PersonIDs...)
	if t.ClosedAt != nil {
		c := *t.ClosedAt
		out.ClosedAt = &c
	}
	return &out
}

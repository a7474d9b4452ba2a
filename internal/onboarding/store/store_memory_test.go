package store

import (
	"context"
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/stretchr/testify/suite"

	identity "onboard/internal/identity/models"
	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	ctx    context.Context
	now    time.Time
	claims *InMemoryClaimStore
	tasks  *InMemoryReviewTaskStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.claims = NewInMemoryClaimStore()
	s.tasks = NewInMemoryReviewTaskStore()
}

var claimKey = id.ClaimKey{ClientID: "teacher-portal", RequestID: "req-1"}

func (s *InMemoryStoreSuite) newClaim(key id.ClaimKey) *models.Claim {
	c, err := models.NewClaim(id.NewClaimID(), key, identity.IdentityClaim{
		FirstName:   "Ann",
		LastName:    "Smith",
		DateOfBirth: civil.Date{Year: 1990, Month: time.January, Day: 1},
	}, s.now)
	s.Require().NoError(err)
	return c
}

func (s *InMemoryStoreSuite) TestCreateRejectsDuplicateKey() {
	s.Require().NoError(s.claims.Create(s.ctx, s.newClaim(claimKey)))

	err := s.claims.Create(s.ctx, s.newClaim(claimKey))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestFindByKeyReturnsCopy() {
	claim := s.newClaim(claimKey)
	s.Require().NoError(s.claims.Create(s.ctx, claim))

	got, err := s.claims.FindByKey(s.ctx, claimKey)
	s.Require().NoError(err)
	got.RecordMatch(identity.NoMatch(nil), s.now)

	again, err := s.claims.FindByKey(s.ctx, claimKey)
	s.Require().NoError(err)
	s.Nil(again.MatchResult, "mutating a loaded claim must not leak into the store")
}

func (s *InMemoryStoreSuite) TestUpdate() {
	claim := s.newClaim(claimKey)
	s.Require().NoError(s.claims.Create(s.ctx, claim))

	personID := id.NewPersonID()
	claim.RecordMatch(identity.DefiniteMatch(personID, nil), s.now)
	s.Require().NoError(claim.Resolve(personID, "1000000", s.now))
	s.Require().NoError(claim.Complete("token", s.now))
	s.Require().NoError(s.claims.Update(s.ctx, claim))

	got, err := s.claims.FindByKeyForUpdate(s.ctx, claimKey)
	s.Require().NoError(err)
	s.Equal(models.ClaimStatusCompleted, got.Status)
	s.Equal(personID, *got.ResolvedPersonID)
	s.Equal(identity.OutcomeDefiniteMatch, got.MatchResult.Outcome)
	s.Equal("token", got.Token)
}

func (s *InMemoryStoreSuite) TestMissingClaim() {
	_, err := s.claims.FindByKey(s.ctx, claimKey)
	s.ErrorIs(err, sentinel.ErrNotFound)

	err = s.claims.Update(s.ctx, s.newClaim(claimKey))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestOneOpenTaskPerKind() {
	first := models.NewReviewTask(id.NewReviewTaskID(), claimKey, models.ReviewTaskPotentialDuplicate, nil, s.now)
	s.Require().NoError(s.tasks.Create(s.ctx, first))

	dup := models.NewReviewTask(id.NewReviewTaskID(), claimKey, models.ReviewTaskPotentialDuplicate, nil, s.now)
	s.ErrorIs(s.tasks.Create(s.ctx, dup), sentinel.ErrConflict)

	other := models.NewReviewTask(id.NewReviewTaskID(), claimKey, models.ReviewTaskFurtherChecks, nil, s.now)
	s.NoError(s.tasks.Create(s.ctx, other))

	s.Require().NoError(s.tasks.Close(s.ctx, first.ID, s.now))
	s.NoError(s.tasks.Create(s.ctx, dup), "a closed task frees its kind")
}

func (s *InMemoryStoreSuite) TestCloseTask() {
	task := models.NewReviewTask(id.NewReviewTaskID(), claimKey, models.ReviewTaskFurtherChecks, []id.PersonID{id.NewPersonID()}, s.now)
	s.Require().NoError(s.tasks.Create(s.ctx, task))

	s.Require().NoError(s.tasks.Close(s.ctx, task.ID, s.now.Add(time.Minute)))
	s.ErrorIs(s.tasks.Close(s.ctx, task.ID, s.now), sentinel.ErrInvalidState)
	s.ErrorIs(s.tasks.Close(s.ctx, id.NewReviewTaskID(), s.now), sentinel.ErrNotFound)

	_, err := s.tasks.FindOpen(s.ctx, claimKey, models.ReviewTaskFurtherChecks)
	s.ErrorIs(err, sentinel.ErrNotFound)

	all, err := s.tasks.ListByClaim(s.ctx, claimKey)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(models.ReviewTaskClosed, all[0].Status)
	s.Require().NotNil(all[0].ClosedAt)
	s.Equal(s.now.Add(time.Minute), *all[0].ClosedAt)
}

func (s *InMemoryStoreSuite) TestListOpen() {
	other := id.ClaimKey{ClientID: "teacher-portal", RequestID: "req-2"}
	a := models.NewReviewTask(id.NewReviewTaskID(), claimKey, models.ReviewTaskPotentialDuplicate, nil, s.now)
	b := models.NewReviewTask(id.NewReviewTaskID(), other, models.ReviewTaskPotentialDuplicate, nil, s.now)
	c := models.NewReviewTask(id.NewReviewTaskID(), other, models.ReviewTaskFurtherChecks, nil, s.now)
	for _, t := range []*models.ReviewTask{a, b, c} {
		s.Require().NoError(s.tasks.Create(s.ctx, t))
	}
	s.Require().NoError(s.tasks.Close(s.ctx, a.ID, s.now))

	open, err := s.tasks.ListOpen(s.ctx, models.ReviewTaskPotentialDuplicate)
	s.Require().NoError(err)
	s.Require().Len(open, 1)
	s.Equal(b.ID, open[0].ID)
}

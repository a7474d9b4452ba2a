//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/stretchr/testify/suite"

	identity "onboard/internal/identity/models"
	"onboard/internal/identity/registry"
	"onboard/internal/onboarding/models"
	"onboard/internal/onboarding/store"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
	txcontext "onboard/pkg/platform/tx"
	"onboard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	claims   *store.PostgresClaimStore
	tasks    *store.PostgresReviewTaskStore
	persons  *registry.PostgresStore
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.claims = store.NewPostgresClaimStore(s.postgres.DB)
	s.tasks = store.NewPostgresReviewTaskStore(s.postgres.DB)
	s.persons = registry.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "review_tasks", "claims", "employment_records", "persons")
	s.Require().NoError(err)
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStoreSuite) newClaim(requestID string) *models.Claim {
	c, err := models.NewClaim(id.NewClaimID(),
		id.ClaimKey{ClientID: "teacher-portal", RequestID: id.RequestID(requestID)},
		identity.IdentityClaim{
			FirstName:               "Siân",
			MiddleName:              "Elin",
			LastName:                "Smith",
			DateOfBirth:             civil.Date{Year: 1979, Month: time.July, Day: 30},
			NationalInsuranceNumber: "AB123456C",
			EmailAddress:            "sian@example.com",
			Gender:                  identity.GenderFemale,
		}, s.now)
	s.Require().NoError(err)
	return c
}

func (s *PostgresStoreSuite) addPerson() *identity.PersonRecord {
	ctx := context.Background()
	ref, err := s.persons.NextReferenceNumber(ctx)
	s.Require().NoError(err)
	p, err := identity.NewPersonRecord(id.NewPersonID(), ref, s.newClaim("seed").Identity, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.persons.Create(ctx, p))
	return p
}

func (s *PostgresStoreSuite) TestClaimRoundTrip() {
	ctx := context.Background()
	claim := s.newClaim("req-1")
	s.Require().NoError(s.claims.Create(ctx, claim))

	got, err := s.claims.FindByKey(ctx, claim.Key)
	s.Require().NoError(err)
	s.Equal(claim.ID, got.ID)
	s.Equal(claim.Identity, got.Identity)
	s.Equal(models.ClaimStatusPending, got.Status)
	s.Nil(got.MatchResult)
	s.Nil(got.ResolvedPersonID)
	s.Nil(got.CompletedAt)
}

func (s *PostgresStoreSuite) TestDuplicateKeyConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.claims.Create(ctx, s.newClaim("req-1")))

	err := s.claims.Create(ctx, s.newClaim("req-1"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUpdateStoresMatchResultAndResolution() {
	ctx := context.Background()
	person := s.addPerson()
	claim := s.newClaim("req-1")
	s.Require().NoError(s.claims.Create(ctx, claim))

	result := identity.DefiniteMatch(person.ID, []identity.CandidateVerdict{{
		PersonID: person.ID,
		Matched:  identity.NewAttributeSet(identity.AttributeNationalInsuranceNumber, identity.AttributeDateOfBirth),
		Verdict:  identity.VerdictDefinite,
		Rule:     "nino_and_dob",
	}})
	claim.RecordMatch(result, s.now)
	s.Require().NoError(claim.Resolve(person.ID, person.ReferenceNumber, s.now))
	s.Require().NoError(claim.Complete("signed-token", s.now))
	s.Require().NoError(s.claims.Update(ctx, claim))

	got, err := s.claims.FindByKey(ctx, claim.Key)
	s.Require().NoError(err)
	s.Equal(models.ClaimStatusCompleted, got.Status)
	s.Require().NotNil(got.MatchResult)
	s.Equal(result, *got.MatchResult)
	s.Equal(person.ID, *got.ResolvedPersonID)
	s.Equal(person.ReferenceNumber, got.ReferenceNumber)
	s.Equal("signed-token", got.Token)
	s.Require().NotNil(got.CompletedAt)
	s.True(s.now.Equal(*got.CompletedAt))
}

func (s *PostgresStoreSuite) TestUpdateMissingClaim() {
	err := s.claims.Update(context.Background(), s.newClaim("missing"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFindByKeyForUpdateInsideTransaction() {
	ctx := context.Background()
	claim := s.newClaim("req-1")
	s.Require().NoError(s.claims.Create(ctx, claim))

	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)
	defer func() { _ = tx.Rollback() }()

	txCtx := txcontext.WithTx(ctx, tx)
	locked, err := s.claims.FindByKeyForUpdate(txCtx, claim.Key)
	s.Require().NoError(err)

	locked.RecordMatch(identity.NoMatch(nil), s.now)
	s.Require().NoError(s.claims.Update(txCtx, locked))
	s.Require().NoError(tx.Rollback())

	got, err := s.claims.FindByKey(ctx, claim.Key)
	s.Require().NoError(err)
	s.Nil(got.MatchResult, "rolled back update must not persist")
}

func (s *PostgresStoreSuite) TestReviewTasks() {
	ctx := context.Background()
	claim := s.newClaim("req-1")
	s.Require().NoError(s.claims.Create(ctx, claim))
	person := s.addPerson()

	task := models.NewReviewTask(id.NewReviewTaskID(), claim.Key, models.ReviewTaskPotentialDuplicate, []id.PersonID{person.ID}, s.now)
	s.Require().NoError(s.tasks.Create(ctx, task))

	dup := models.NewReviewTask(id.NewReviewTaskID(), claim.Key, models.ReviewTaskPotentialDuplicate, nil, s.now)
	s.ErrorIs(s.tasks.Create(ctx, dup), sentinel.ErrConflict)

	open, err := s.tasks.FindOpen(ctx, claim.Key, models.ReviewTaskPotentialDuplicate)
	s.Require().NoError(err)
	s.Equal(task.ID, open.ID)
	s.Equal([]id.PersonID{person.ID}, open.PersonIDs)

	listed, err := s.tasks.ListOpen(ctx, models.ReviewTaskPotentialDuplicate)
	s.Require().NoError(err)
	s.Len(listed, 1)

	s.Require().NoError(s.tasks.Close(ctx, task.ID, s.now))
	s.ErrorIs(s.tasks.Close(ctx, task.ID, s.now), sentinel.ErrNotFound)

	_, err = s.tasks.FindOpen(ctx, claim.Key, models.ReviewTaskPotentialDuplicate)
	s.ErrorIs(err, sentinel.ErrNotFound)

	all, err := s.tasks.ListByClaim(ctx, claim.Key)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(models.ReviewTaskClosed, all[0].Status)
	s.NotNil(all[0].ClosedAt)
}

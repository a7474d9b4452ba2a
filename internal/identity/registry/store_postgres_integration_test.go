//go:build integration

package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/stretchr/testify/suite"

	"onboard/internal/identity/models"
	"onboard/internal/identity/query"
	"onboard/internal/identity/registry"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *registry.PostgresStore
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
	s.store = registry.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "review_tasks", "claims", "employment_records", "persons")
	s.Require().NoError(err)
}

var dob = civil.Date{Year: 1979, Month: time.July, Day: 30}

func (s *PostgresStoreSuite) add(mutate func(p *models.PersonRecord)) *models.PersonRecord {
	ctx := context.Background()
	ref, err := s.store.NextReferenceNumber(ctx)
	s.Require().NoError(err)
	now := time.Now().UTC().Truncate(time.Microsecond)
	p := &models.PersonRecord{
		ID:              id.NewPersonID(),
		ReferenceNumber: ref,
		FirstName:       "Siân",
		LastName:        "Smith",
		DateOfBirth:     dob,
		Status:          models.PersonStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if mutate != nil {
		mutate(p)
	}
	s.Require().NoError(s.store.Create(ctx, p))
	return p
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	qts := civil.Date{Year: 2005, Month: time.September, Day: 1}
	p := s.add(func(p *models.PersonRecord) {
		p.MiddleName = "Elin"
		p.EmailAddress = "sian@example.com"
		p.Gender = models.GenderFemale
		p.HasActiveAlert = true
		p.QtsDate = &qts
		p.EmploymentRecords = []models.EmploymentRecord{{EmployerReference: "SCH-1", NationalInsuranceNumber: "AB123456D", StartDate: qts}}
	})

	got, err := s.store.FindByID(context.Background(), p.ID)
	s.Require().NoError(err)
	s.Equal(p.ReferenceNumber, got.ReferenceNumber)
	s.Equal(dob, got.DateOfBirth)
	s.Equal(models.GenderFemale, got.Gender)
	s.True(got.HasActiveAlert)
	s.Require().NotNil(got.QtsDate)
	s.Equal(qts, *got.QtsDate)
	s.Nil(got.EytsDate)
	s.Require().Len(got.EmploymentRecords, 1)
	s.Equal("AB123456D", got.EmploymentRecords[0].NationalInsuranceNumber)
}

func (s *PostgresStoreSuite) TestFindByNationalInsuranceNumber() {
	ctx := context.Background()
	own := s.add(func(p *models.PersonRecord) { p.NationalInsuranceNumber = "QQ123456C" })
	employed := s.add(func(p *models.PersonRecord) {
		p.EmploymentRecords = []models.EmploymentRecord{{EmployerReference: "SCH-2", NationalInsuranceNumber: "QQ 12 34 56 C"}}
	})
	s.add(func(p *models.PersonRecord) {
		p.NationalInsuranceNumber = "QQ123456C"
		p.Status = models.PersonStatusMerged
		p.MergedInto = &own.ID
	})

	got, err := s.store.FindByNationalInsuranceNumber(ctx, "qq123456c")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(own.ID, got[0].ID)
	s.Equal(employed.ID, got[1].ID)
}

func (s *PostgresStoreSuite) TestFindByDemographicsUsesNormalisedColumns() {
	ctx := context.Background()
	p := s.add(func(p *models.PersonRecord) { p.MiddleName = "Elin" })
	s.add(func(p *models.PersonRecord) { p.LastName = "Jones"; p.MiddleName = "Mair" })

	filter, ok := query.Demographics([]string{"SIAN"}, "", "smith", dob)
	s.Require().True(ok)

	got, err := s.store.FindByDemographics(ctx, filter)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(p.ID, got[0].ID)
}

func (s *PostgresStoreSuite) TestFindByEmail() {
	p := s.add(func(p *models.PersonRecord) { p.EmailAddress = "Sian@Example.com" })

	got, err := s.store.FindByEmail(context.Background(), "sian@example.com")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(p.ID, got[0].ID)
}

func (s *PostgresStoreSuite) TestDuplicateReferenceNumberConflicts() {
	p := s.add(nil)
	dup := *p
	dup.ID = id.NewPersonID()

	err := s.store.Create(context.Background(), &dup)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestFindByIDNotFound() {
	_, err := s.store.FindByID(context.Background(), id.NewPersonID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

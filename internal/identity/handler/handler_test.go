package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-sql/civil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"onboard/internal/identity/handler/mocks"
	"onboard/internal/identity/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/identity-mocks.go -package=mocks Service
type IdentityHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestIdentityHandlerSuite(t *testing.T) {
	suite.Run(t, new(IdentityHandlerSuite))
}

func (s *IdentityHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	New(s.service, logger).Register(s.router)
}

func (s *IdentityHandlerSuite) TestMatchReturnsResult() {
	personID := id.NewPersonID()
	s.service.EXPECT().
		MatchPersons(gomock.Any(), models.IdentityClaim{
			FirstName:    "Anne",
			LastName:     "Smith",
			DateOfBirth:  civil.Date{Year: 1990, Month: time.January, Day: 1},
			EmailAddress: "ann@example.com",
			Gender:       models.GenderFemale,
		}).
		Return(models.DefiniteMatch(personID, nil), nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/persons/match", map[string]any{
		"first_name":                "Anne",
		"last_name":                 "Smith",
		"date_of_birth":             "1990-01-01",
		"email_address":             "ann@example.com",
		"gender":                    "female",
		"national_insurance_number": nil,
	})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[models.MatchResult](s.T(), rr)
	s.Equal(models.OutcomeDefiniteMatch, resp.Outcome)
	s.Equal(personID, resp.PersonID)
}

func (s *IdentityHandlerSuite) TestInvalidClaimIsRejected() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/persons/match", map[string]any{
		"first_name":    "Anne",
		"date_of_birth": "1990-01-01",
	})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
}

func (s *IdentityHandlerSuite) TestUnknownFieldIsRejected() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/persons/match", map[string]any{
		"first_name":    "Anne",
		"last_name":     "Smith",
		"date_of_birth": "1990-01-01",
		"nickname":      "Annie",
	})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *IdentityHandlerSuite) TestRegistryFailureIsRetryable() {
	s.service.EXPECT().MatchPersons(gomock.Any(), gomock.Any()).
		Return(models.MatchResult{}, sentinel.ErrUnavailable)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/persons/match", map[string]any{
		"first_name":    "Anne",
		"last_name":     "Smith",
		"date_of_birth": "1990-01-01",
	})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, "service_unavailable")
}

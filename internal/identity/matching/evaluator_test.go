package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"onboard/internal/identity/matching/mocks"
	"onboard/internal/identity/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
)

func TestEvaluator_AliasLookupErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	names := mocks.NewMockNameResolver(ctrl)
	names.EXPECT().
		IsFirstNameMatch(gomock.Any(), "Anne", "Ann").
		Return(models.AttributeType(0), false, sentinel.ErrUnavailable)

	_, err := NewEvaluator(names).Evaluate(context.Background(),
		models.IdentityClaim{FirstName: "Anne", LastName: "Smith", DateOfBirth: dob1990},
		&models.PersonRecord{ID: id.NewPersonID(), FirstName: "Ann", LastName: "Smith", DateOfBirth: dob1990},
	)

	require.ErrorIs(t, err, sentinel.ErrUnavailable)
}

package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"onboard/internal/identity/models"
)

func TestClassify(t *testing.T) {
	withNINO := models.IdentityClaim{NationalInsuranceNumber: "AB123456C"}
	withoutNINO := models.IdentityClaim{}

	tests := []struct {
		name        string
		claim       models.IdentityClaim
		matched     models.AttributeSet
		wantVerdict models.Verdict
		wantRule    string
	}{
		{
			name:        "nino and dob",
			claim:       withNINO,
			matched:     models.NewAttributeSet(models.AttributeNationalInsuranceNumber, models.AttributeDateOfBirth),
			wantVerdict: models.VerdictDefinite,
			wantRule:    RuleNINOAndDateOfBirth,
		},
		{
			name:  "five demographics without nino",
			claim: withoutNINO,
			matched: models.NewAttributeSet(models.AttributeFirstNameAlias, models.AttributeLastName,
				models.AttributeDateOfBirth, models.AttributeEmailAddress, models.AttributeGender),
			wantVerdict: models.VerdictDefinite,
			wantRule:    RuleDemographicsWithoutNINO,
		},
		{
			name:  "five demographics with a supplied nino",
			claim: withNINO,
			matched: models.NewAttributeSet(models.AttributeFirstName, models.AttributeLastName,
				models.AttributeDateOfBirth, models.AttributeEmailAddress, models.AttributeGender),
			wantVerdict: models.VerdictPotential,
			wantRule:    RuleThreeAttributes,
		},
		{
			name:        "gender does not count towards three",
			claim:       withoutNINO,
			matched:     models.NewAttributeSet(models.AttributeFirstName, models.AttributeLastName, models.AttributeGender),
			wantVerdict: models.VerdictNone,
		},
		{
			name:        "first name and alias collapse",
			claim:       withoutNINO,
			matched:     models.NewAttributeSet(models.AttributeFirstName, models.AttributeFirstNameAlias, models.AttributeLastName),
			wantVerdict: models.VerdictNone,
		},
		{
			name:        "three distinct attributes",
			claim:       withoutNINO,
			matched:     models.NewAttributeSet(models.AttributeMiddleName, models.AttributeLastName, models.AttributeDateOfBirth),
			wantVerdict: models.VerdictPotential,
			wantRule:    RuleThreeAttributes,
		},
		{
			name:        "email alone",
			claim:       withoutNINO,
			matched:     models.NewAttributeSet(models.AttributeEmailAddress),
			wantVerdict: models.VerdictPotential,
			wantRule:    RuleStrongIdentifier,
		},
		{
			name:        "nino alone",
			claim:       withNINO,
			matched:     models.NewAttributeSet(models.AttributeNationalInsuranceNumber),
			wantVerdict: models.VerdictPotential,
			wantRule:    RuleStrongIdentifier,
		},
		{
			name:        "middle name and gender",
			claim:       withoutNINO,
			matched:     models.NewAttributeSet(models.AttributeMiddleName, models.AttributeGender),
			wantVerdict: models.VerdictNone,
		},
		{
			name:        "nothing",
			claim:       withNINO,
			wantVerdict: models.VerdictNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, rule := Classify(tt.claim, tt.matched)
			assert.Equal(t, tt.wantVerdict, verdict)
			assert.Equal(t, tt.wantRule, rule)
		})
	}
}

package matching

import (
	"onboard/internal/identity/models"
)

// Rule names, recorded on each candidate verdict.
const (
	RuleNINOAndDateOfBirth      = "nino_and_dob"
	RuleDemographicsWithoutNINO = "demographics_without_nino"
	RuleThreeAttributes         = "three_attributes"
	RuleStrongIdentifier        = "strong_identifier"
)

const potentialAttributeThreshold = 3

// Rule is one entry of the classification chain.
type Rule struct {
	Name    string
	Verdict models.Verdict
	Holds   func(claim models.IdentityClaim, matched models.AttributeSet) bool
}

// Rules is evaluated in order; the first rule that holds decides the verdict.
// Definite rules precede potential rules.
var Rules = []Rule{
	{
		Name:    RuleNINOAndDateOfBirth,
		Verdict: models.VerdictDefinite,
		Holds: func(claim models.IdentityClaim, matched models.AttributeSet) bool {
			return claim.HasNationalInsuranceNumber() &&
				matched.Has(models.AttributeDateOfBirth) &&
				matched.Has(models.AttributeNationalInsuranceNumber)
		},
	},
	{
		// Only applies when the claim carries no usable NINO. A claim whose
		// NINO disagrees with the record cannot be made definite by demographics.
		Name:    RuleDemographicsWithoutNINO,
		Verdict: models.VerdictDefinite,
		Holds: func(claim models.IdentityClaim, matched models.AttributeSet) bool {
			return !claim.HasNationalInsuranceNumber() &&
				matched.HasFirstName() &&
				matched.Has(models.AttributeLastName) &&
				matched.Has(models.AttributeDateOfBirth) &&
				matched.Has(models.AttributeEmailAddress) &&
				matched.Has(models.AttributeGender)
		},
	},
	{
		Name:    RuleThreeAttributes,
		Verdict: models.VerdictPotential,
		Holds: func(_ models.IdentityClaim, matched models.AttributeSet) bool {
			return matched.DistinctCount() >= potentialAttributeThreshold
		},
	},
	{
		Name:    RuleStrongIdentifier,
		Verdict: models.VerdictPotential,
		Holds: func(_ models.IdentityClaim, matched models.AttributeSet) bool {
			return matched.HasAny(models.AttributeNationalInsuranceNumber, models.AttributeEmailAddress)
		},
	},
}

// Classify applies Rules to a matched attribute set.
// This is pure domain logic - no I/O, no side effects.
func Classify(claim models.IdentityClaim, matched models.AttributeSet) (models.Verdict, string) {
	for _, r := range Rules {
		if r.Holds(claim, matched) {
			return r.Verdict, r.Name
		}
	}
	return models.VerdictNone, ""
}

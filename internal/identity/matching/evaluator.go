package matching

import (
	"context"

	"onboard/internal/identity/models"
	"onboard/internal/identity/normalize"
)

// Evaluator compares a claim with one candidate record.
type Evaluator struct {
	names NameResolver
}

func NewEvaluator(names NameResolver) *Evaluator {
	return &Evaluator{names: names}
}

// Evaluate returns the candidate's verdict along with the attribute types
// that matched. Unsupplied claim fields neither match nor mismatch.
func (e *Evaluator) Evaluate(ctx context.Context, claim models.IdentityClaim, candidate *models.PersonRecord) (models.CandidateVerdict, error) {
	matched, err := e.MatchedAttributes(ctx, claim, candidate)
	if err != nil {
		return models.CandidateVerdict{}, err
	}
	verdict, rule := Classify(claim, matched)
	return models.CandidateVerdict{
		PersonID: candidate.ID,
		Matched:  matched,
		Verdict:  verdict,
		Rule:     rule,
	}, nil
}

// MatchedAttributes computes the set of attribute types on which claim and
// record agree. First name contributes at most one of FirstName and
// FirstNameAlias.
func (e *Evaluator) MatchedAttributes(ctx context.Context, claim models.IdentityClaim, record *models.PersonRecord) (models.AttributeSet, error) {
	var matched models.AttributeSet

	firstName, ok, err := e.names.IsFirstNameMatch(ctx, claim.FirstName, record.FirstName)
	if err != nil {
		return 0, err
	}
	if ok {
		matched = matched.With(firstName)
	}
	if normalize.Equal(claim.MiddleName, record.MiddleName) {
		matched = matched.With(models.AttributeMiddleName)
	}
	if normalize.Equal(claim.LastName, record.LastName) {
		matched = matched.With(models.AttributeLastName)
	}
	if normalize.DateEqual(claim.DateOfBirth, record.DateOfBirth) {
		matched = matched.With(models.AttributeDateOfBirth)
	}
	if normalize.Equal(claim.EmailAddress, record.EmailAddress) {
		matched = matched.With(models.AttributeEmailAddress)
	}
	if ninoMatches(claim.NationalInsuranceNumber, record) {
		matched = matched.With(models.AttributeNationalInsuranceNumber)
	}
	if genderMatches(claim.Gender, record.Gender) {
		matched = matched.With(models.AttributeGender)
	}
	return matched, nil
}

// ninoMatches checks the record's own number and every employment-record
// number. Either counts as the same attribute.
func ninoMatches(claimNINO string, record *models.PersonRecord) bool {
	if normalize.NationalInsuranceNumberEqual(claimNINO, record.NationalInsuranceNumber) {
		return true
	}
	for _, er := range record.EmploymentRecords {
		if normalize.NationalInsuranceNumberEqual(claimNINO, er.NationalInsuranceNumber) {
			return true
		}
	}
	return false
}

// genderMatches treats not_available as unsupplied on either side.
func genderMatches(claim, record models.Gender) bool {
	if claim == models.GenderNotAvailable || record == models.GenderNotAvailable {
		return false
	}
	return normalize.Equal(string(claim), string(record))
}

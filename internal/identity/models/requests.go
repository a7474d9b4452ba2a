package models

import (
	"strings"

	"github.com/golang-sql/civil"

	dErrors "onboard/pkg/domain-errors"
)

// ClaimRequest is the wire form of an identity claim. Optional fields may be
// omitted, null or empty; all three mean "not supplied".
type ClaimRequest struct {
	FirstName               string `json:"first_name"`
	MiddleName              string `json:"middle_name"`
	LastName                string `json:"last_name"`
	DateOfBirth             string `json:"date_of_birth"`
	NationalInsuranceNumber string `json:"national_insurance_number"`
	EmailAddress            string `json:"email_address"`
	Gender                  string `json:"gender"`

	claim IdentityClaim
}

// Validate parses the request and checks the mandatory fields.
func (r *ClaimRequest) Validate() error {
	dob, err := civil.ParseDate(strings.TrimSpace(r.DateOfBirth))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "date_of_birth must be a YYYY-MM-DD date")
	}
	gender, err := ParseGender(strings.TrimSpace(r.Gender))
	if err != nil {
		return err
	}
	claim := IdentityClaim{
		FirstName:               strings.TrimSpace(r.FirstName),
		MiddleName:              strings.TrimSpace(r.MiddleName),
		LastName:                strings.TrimSpace(r.LastName),
		DateOfBirth:             dob,
		NationalInsuranceNumber: strings.TrimSpace(r.NationalInsuranceNumber),
		EmailAddress:            strings.TrimSpace(r.EmailAddress),
		Gender:                  gender,
	}
	if err := claim.Validate(); err != nil {
		return err
	}
	r.claim = claim
	return nil
}

// Claim returns the parsed claim. Only meaningful after Validate succeeded.
func (r *ClaimRequest) Claim() IdentityClaim {
	return r.claim
}

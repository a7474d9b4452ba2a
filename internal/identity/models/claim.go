package models

import (
	"strings"

	"github.com/golang-sql/civil"

	dErrors "onboard/pkg/domain-errors"
)

// IdentityClaim is the unverified identity data submitted for resolution.
// Optional fields use the empty string for "not supplied"; a JSON null and an
// empty string are indistinguishable by design of the wire format.
type IdentityClaim struct {
	FirstName               string     `json:"first_name"`
	MiddleName              string     `json:"middle_name,omitempty"`
	LastName                string     `json:"last_name"`
	DateOfBirth             civil.Date `json:"date_of_birth"`
	NationalInsuranceNumber string     `json:"national_insurance_number,omitempty"`
	EmailAddress            string     `json:"email_address,omitempty"`
	Gender                  Gender     `json:"gender,omitempty"`
}

// Validate checks the mandatory fields. Optional fields are never errors.
func (c IdentityClaim) Validate() error {
	if strings.TrimSpace(c.FirstName) == "" {
		return dErrors.New(dErrors.CodeValidation, "first_name is required")
	}
	if strings.TrimSpace(c.LastName) == "" {
		return dErrors.New(dErrors.CodeValidation, "last_name is required")
	}
	if c.DateOfBirth == (civil.Date{}) || !c.DateOfBirth.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "date_of_birth is required")
	}
	return nil
}

// HasNationalInsuranceNumber reports whether a usable number was supplied.
func (c IdentityClaim) HasNationalInsuranceNumber() bool {
	return strings.TrimSpace(c.NationalInsuranceNumber) != ""
}

// HasEmailAddress reports whether an email was supplied.
func (c IdentityClaim) HasEmailAddress() bool {
	return strings.TrimSpace(c.EmailAddress) != ""
}

// HasMiddleName reports whether a middle name was supplied.
func (c IdentityClaim) HasMiddleName() bool {
	return strings.TrimSpace(c.MiddleName) != ""
}

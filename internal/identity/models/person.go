package models

import (
	"time"

	"github.com/golang-sql/civil"

	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
)

// PersonStatus tracks whether a record is the live identity or has been
// superseded by a merge.
type PersonStatus string

const (
	PersonStatusActive PersonStatus = "active"
	PersonStatusMerged PersonStatus = "merged"
)

// Gender is optional; the zero value means "not supplied".
type Gender string

const (
	GenderMale         Gender = "male"
	GenderFemale       Gender = "female"
	GenderOther        Gender = "other"
	GenderNotAvailable Gender = "not_available"
)

var validGenders = map[Gender]bool{
	GenderMale:         true,
	GenderFemale:       true,
	GenderOther:        true,
	GenderNotAvailable: true,
}

// ParseGender accepts the empty string as "not supplied".
func ParseGender(s string) (Gender, error) {
	if s == "" {
		return "", nil
	}
	g := Gender(s)
	if !validGenders[g] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid gender")
	}
	return g, nil
}

// EmploymentRecord is a secondary record historically attached to a person.
// Its national insurance number was supplied by the employer and may differ
// from the person's own.
type EmploymentRecord struct {
	EmployerReference       string
	NationalInsuranceNumber string
	StartDate               civil.Date
}

// PersonRecord is the canonical identity in the registry.
//
// Invariants:
//   - FirstName, LastName and DateOfBirth are always present
//   - Records are never deleted; a merged record points at its survivor
//   - ReferenceNumber is allocated once and never reused
type PersonRecord struct {
	ID                      id.PersonID
	ReferenceNumber         string
	FirstName               string
	MiddleName              string
	LastName                string
	DateOfBirth             civil.Date
	NationalInsuranceNumber string
	EmailAddress            string
	Gender                  Gender
	EmploymentRecords       []EmploymentRecord
	Status                  PersonStatus
	MergedInto              *id.PersonID
	HasActiveAlert          bool
	QtsDate                 *civil.Date
	EytsDate                *civil.Date
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// NewPersonRecord creates an active record from a resolved claim.
func NewPersonRecord(personID id.PersonID, referenceNumber string, claim IdentityClaim, now time.Time) (*PersonRecord, error) {
	if personID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "person id is required")
	}
	if referenceNumber == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reference number is required")
	}
	if err := claim.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "person record requires a valid claim")
	}
	return &PersonRecord{
		ID:                      personID,
		ReferenceNumber:         referenceNumber,
		FirstName:               claim.FirstName,
		MiddleName:              claim.MiddleName,
		LastName:                claim.LastName,
		DateOfBirth:             claim.DateOfBirth,
		NationalInsuranceNumber: claim.NationalInsuranceNumber,
		EmailAddress:            claim.EmailAddress,
		Gender:                  claim.Gender,
		Status:                  PersonStatusActive,
		CreatedAt:               now,
		UpdatedAt:               now,
	}, nil
}

// IsActive reports whether the record can be matched against.
func (p *PersonRecord) IsActive() bool {
	return p.Status == PersonStatusActive
}

// HasQts reports whether qualified teacher status has been awarded.
func (p *PersonRecord) HasQts() bool {
	return p.QtsDate != nil
}

// HasEyts reports whether early years teacher status has been awarded.
func (p *PersonRecord) HasEyts() bool {
	return p.EytsDate != nil
}

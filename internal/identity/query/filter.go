// Package query is a small declarative filter language over person records.
//
// Filters are immutable values composed with AllOf and AnyOf. The same filter
// can be evaluated in memory against a PersonRecord or rendered to a SQL WHERE
// clause over the registry's normalised columns. All values are normalised on
// construction, so both evaluations compare like with like.
package query

import (
	"slices"

	"github.com/golang-sql/civil"

	"onboard/internal/identity/models"
	"onboard/internal/identity/normalize"
)

// Field is a comparable person attribute.
type Field string

const (
	FieldFirstName               Field = "first_name"
	FieldMiddleName              Field = "middle_name"
	FieldLastName                Field = "last_name"
	FieldDateOfBirth             Field = "date_of_birth"
	FieldEmailAddress            Field = "email_address"
	FieldNationalInsuranceNumber Field = "national_insurance_number"
)

type kind int

const (
	kindIn kind = iota
	kindAll
	kindAny
)

// Filter is a predicate tree. The zero value matches nothing.
type Filter struct {
	kind     kind
	field    Field
	values   []string
	children []Filter
}

// In matches when the field equals any of values. Unsupplied values are
// dropped; with none left the filter matches nothing.
func In(field Field, values ...string) Filter {
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := normalizeFor(field, v)
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return Filter{kind: kindIn, field: field, values: out}
}

// Eq matches when the field equals value.
func Eq(field Field, value string) Filter {
	return In(field, value)
}

// DateOfBirthEq matches the calendar date d.
func DateOfBirthEq(d civil.Date) Filter {
	if d == (civil.Date{}) {
		return Filter{kind: kindIn, field: FieldDateOfBirth}
	}
	return Filter{kind: kindIn, field: FieldDateOfBirth, values: []string{d.String()}}
}

// AllOf matches when every child matches. With no children it matches everything.
func AllOf(filters ...Filter) Filter {
	return Filter{kind: kindAll, children: slices.Clone(filters)}
}

// AnyOf matches when at least one child matches. With no children it matches nothing.
func AnyOf(filters ...Filter) Filter {
	return Filter{kind: kindAny, children: slices.Clone(filters)}
}

// IsEmpty reports whether the filter can never match.
func (f Filter) IsEmpty() bool {
	switch f.kind {
	case kindIn:
		return len(f.values) == 0
	case kindAny:
		for _, c := range f.children {
			if !c.IsEmpty() {
				return false
			}
		}
		return true
	default:
		for _, c := range f.children {
			if c.IsEmpty() {
				return true
			}
		}
		return false
	}
}

// Matches evaluates the filter against a record.
func (f Filter) Matches(p *models.PersonRecord) bool {
	switch f.kind {
	case kindIn:
		for _, v := range recordValues(p, f.field) {
			if slices.Contains(f.values, v) {
				return true
			}
		}
		return false
	case kindAll:
		for _, c := range f.children {
			if !c.Matches(p) {
				return false
			}
		}
		return true
	default:
		for _, c := range f.children {
			if c.Matches(p) {
				return true
			}
		}
		return false
	}
}

func normalizeFor(field Field, v string) string {
	if field == FieldNationalInsuranceNumber {
		return normalize.NationalInsuranceNumber(v)
	}
	return normalize.Text(v)
}

func recordValues(p *models.PersonRecord, field Field) []string {
	switch field {
	case FieldFirstName:
		return []string{normalize.Text(p.FirstName)}
	case FieldMiddleName:
		return []string{normalize.Text(p.MiddleName)}
	case FieldLastName:
		return []string{normalize.Text(p.LastName)}
	case FieldDateOfBirth:
		if p.DateOfBirth == (civil.Date{}) {
			return nil
		}
		return []string{p.DateOfBirth.String()}
	case FieldEmailAddress:
		return []string{normalize.Text(p.EmailAddress)}
	case FieldNationalInsuranceNumber:
		out := []string{normalize.NationalInsuranceNumber(p.NationalInsuranceNumber)}
		for _, e := range p.EmploymentRecords {
			out = append(out, normalize.NationalInsuranceNumber(e.NationalInsuranceNumber))
		}
		return out
	default:
		return nil
	}
}

package models

import (
	"encoding/json"
	"fmt"
	"math/bits"
)

// AttributeType names one comparable slot of an identity.
// FirstName and FirstNameAlias are mutually exclusive classifications of the
// same slot: a single comparison yields at most one of them.
type AttributeType uint16

const (
	AttributeFirstName AttributeType = 1 << iota
	AttributeFirstNameAlias
	AttributeMiddleName
	AttributeLastName
	AttributeDateOfBirth
	AttributeEmailAddress
	AttributeNationalInsuranceNumber
	AttributeGender
)

// allAttributes is ordered for stable output.
var allAttributes = []AttributeType{
	AttributeFirstName,
	AttributeFirstNameAlias,
	AttributeMiddleName,
	AttributeLastName,
	AttributeDateOfBirth,
	AttributeEmailAddress,
	AttributeNationalInsuranceNumber,
	AttributeGender,
}

var attributeNames = map[AttributeType]string{
	AttributeFirstName:               "first_name",
	AttributeFirstNameAlias:          "first_name_alias",
	AttributeMiddleName:              "middle_name",
	AttributeLastName:                "last_name",
	AttributeDateOfBirth:             "date_of_birth",
	AttributeEmailAddress:            "email_address",
	AttributeNationalInsuranceNumber: "national_insurance_number",
	AttributeGender:                  "gender",
}

func (a AttributeType) String() string {
	if name, ok := attributeNames[a]; ok {
		return name
	}
	return "unknown"
}

// AttributeSet is an immutable set of matched attribute types.
type AttributeSet uint16

// NewAttributeSet builds a set from the given types.
func NewAttributeSet(types ...AttributeType) AttributeSet {
	var s AttributeSet
	for _, t := range types {
		s = s.With(t)
	}
	return s
}

// With returns a copy of the set including t.
func (s AttributeSet) With(t AttributeType) AttributeSet {
	return s | AttributeSet(t)
}

// Has reports whether t is in the set.
func (s AttributeSet) Has(t AttributeType) bool {
	return s&AttributeSet(t) != 0
}

// HasAny reports whether any of types is in the set.
func (s AttributeSet) HasAny(types ...AttributeType) bool {
	for _, t := range types {
		if s.Has(t) {
			return true
		}
	}
	return false
}

// HasFirstName reports a first-name match, literal or via alias.
func (s AttributeSet) HasFirstName() bool {
	return s.HasAny(AttributeFirstName, AttributeFirstNameAlias)
}

// IsEmpty reports whether nothing matched.
func (s AttributeSet) IsEmpty() bool {
	return s == 0
}

// DistinctCount counts matched attribute types toward the potential-match
// threshold. Gender never counts and the two first-name classifications
// collapse into one.
func (s AttributeSet) DistinctCount() int {
	counted := s &^ AttributeSet(AttributeGender)
	if counted.Has(AttributeFirstName) && counted.Has(AttributeFirstNameAlias) {
		counted &^= AttributeSet(AttributeFirstNameAlias)
	}
	return bits.OnesCount16(uint16(counted))
}

// Types lists the members in declaration order.
func (s AttributeSet) Types() []AttributeType {
	out := make([]AttributeType, 0, bits.OnesCount16(uint16(s)))
	for _, t := range allAttributes {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Names lists the member names in declaration order.
func (s AttributeSet) Names() []string {
	types := s.Types()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

func (s AttributeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

func (s *AttributeSet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	var out AttributeSet
	for _, name := range names {
		t, ok := attributeByName[name]
		if !ok {
			return fmt.Errorf("unknown attribute type %q", name)
		}
		out = out.With(t)
	}
	*s = out
	return nil
}

var attributeByName = func() map[string]AttributeType {
	m := make(map[string]AttributeType, len(attributeNames))
	for t, name := range attributeNames {
		m[name] = t
	}
	return m
}()

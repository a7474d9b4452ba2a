// Package normalize canonicalises identity attributes before comparison.
//
// All comparisons in the matching engine are exact after normalisation. A
// value that is empty after normalisation counts as "not supplied" and never
// participates in a comparison: it neither matches nor mismatches.
package normalize

import (
	"strings"
	"unicode"

	"github.com/golang-sql/civil"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Text trims, strips diacritics and case-folds s.
// Transformers are built per call; they carry state and are not safe to share.
func Text(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// NationalInsuranceNumber additionally drops internal whitespace.
func NationalInsuranceNumber(s string) string {
	return Text(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
}

// Supplied reports whether s carries a value after normalisation.
func Supplied(s string) bool {
	return Text(s) != ""
}

// Equal reports whether a and b are both supplied and equal after normalisation.
func Equal(a, b string) bool {
	na := Text(a)
	return na != "" && na == Text(b)
}

// NationalInsuranceNumberEqual compares two national insurance numbers.
func NationalInsuranceNumberEqual(a, b string) bool {
	na := NationalInsuranceNumber(a)
	return na != "" && na == NationalInsuranceNumber(b)
}

// DateEqual compares calendar dates; an unset date never matches.
func DateEqual(a, b civil.Date) bool {
	return a != (civil.Date{}) && a == b
}

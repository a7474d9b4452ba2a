package query

import (
	"github.com/golang-sql/civil"
)

// DemographicThreshold is how many of first name, middle name, last name and
// date of birth must agree for a record to be a demographic candidate.
const DemographicThreshold = 3

// Demographics builds the OR of every DemographicThreshold-sized subset of
// the supplied demographic predicates. firstNames carries the claim's first
// name and its aliases. ok is false when too few fields were supplied for any
// subset to exist.
func Demographics(firstNames []string, middleName, lastName string, dateOfBirth civil.Date) (Filter, bool) {
	supplied := keepNonEmpty(
		In(FieldFirstName, firstNames...),
		Eq(FieldMiddleName, middleName),
		Eq(FieldLastName, lastName),
		DateOfBirthEq(dateOfBirth),
	)
	subsets := combinations(supplied, DemographicThreshold)
	if len(subsets) == 0 {
		return Filter{}, false
	}
	terms := make([]Filter, len(subsets))
	for i, s := range subsets {
		terms[i] = AllOf(s...)
	}
	return AnyOf(terms...), true
}

func keepNonEmpty(filters ...Filter) []Filter {
	out := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if !f.IsEmpty() {
			out = append(out, f)
		}
	}
	return out
}

// combinations returns every k-element subset of items, preserving order.
func combinations(items []Filter, k int) [][]Filter {
	if k == 0 {
		return [][]Filter{{}}
	}
	if len(items) < k {
		return nil
	}
	head, rest := items[0], items[1:]
	var out [][]Filter
	for _, tail := range combinations(rest, k-1) {
		out = append(out, append([]Filter{head}, tail...))
	}
	return append(out, combinations(rest, k)...)
}

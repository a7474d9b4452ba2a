package query

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// columns maps fields to the registry's normalised columns. The national
// insurance number is handled separately because it spans two tables.
var columns = map[Field]string{
	FieldFirstName:    "p.first_name_key",
	FieldMiddleName:   "p.middle_name_key",
	FieldLastName:     "p.last_name_key",
	FieldDateOfBirth:  "p.date_of_birth",
	FieldEmailAddress: "p.email_address_key",
}

// SQL renders the filter as a boolean expression over the persons table
// aliased as "p". Placeholders are numbered from firstArg.
func (f Filter) SQL(firstArg int) (string, []any) {
	r := &renderer{next: firstArg}
	expr := r.render(f)
	return expr, r.args
}

type renderer struct {
	next int
	args []any
}

func (r *renderer) placeholder(arg any) string {
	r.args = append(r.args, arg)
	p := fmt.Sprintf("$%d", r.next)
	r.next++
	return p
}

func (r *renderer) render(f Filter) string {
	switch f.kind {
	case kindIn:
		return r.renderIn(f)
	case kindAll:
		return r.join(f.children, " AND ", "TRUE")
	default:
		return r.join(f.children, " OR ", "FALSE")
	}
}

func (r *renderer) join(children []Filter, sep, empty string) string {
	if len(children) == 0 {
		return empty
	}
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = r.render(c)
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func (r *renderer) renderIn(f Filter) string {
	if len(f.values) == 0 {
		return "FALSE"
	}
	if f.field == FieldNationalInsuranceNumber {
		p := r.placeholder(pq.Array(f.values))
		return fmt.Sprintf("(p.national_insurance_number_key = ANY(%s) OR EXISTS ("+
			"SELECT 1 FROM employment_records e WHERE e.person_id = p.id "+
			"AND e.national_insurance_number_key = ANY(%s)))", p, p)
	}
	col := columns[f.field]
	if f.field == FieldDateOfBirth {
		return fmt.Sprintf("%s = %s::date", col, r.placeholder(f.values[0]))
	}
	if len(f.values) == 1 {
		return fmt.Sprintf("%s = %s", col, r.placeholder(f.values[0]))
	}
	return fmt.Sprintf("%s = ANY(%s)", col, r.placeholder(pq.Array(f.values)))
}

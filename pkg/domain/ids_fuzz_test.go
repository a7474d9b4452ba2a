//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParsePersonID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParsePersonID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE persons;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParsePersonID(input)
		if err == nil {
			roundTrip, err2 := ParsePersonID(id.String())
			if err2 != nil {
				t.Errorf("Valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("Round-trip changed ID value")
			}
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("Non-UTF8 input was accepted")
		}
	})
}

// FuzzParseRequestID checks request IDs never contain path separators once accepted.
func FuzzParseRequestID(f *testing.F) {
	f.Add("req-1")
	f.Add("a/b")
	f.Add("")

	f.Fuzz(func(t *testing.T, input string) {
		rid, err := ParseRequestID(input)
		if err != nil {
			return
		}
		for _, r := range rid.String() {
			if r == '/' || r == 0 {
				t.Errorf("accepted request id with forbidden rune: %q", rid)
			}
		}
	})
}

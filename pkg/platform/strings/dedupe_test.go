package strings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil stays nil", nil, nil},
		{"empty stays empty", []string{}, []string{}},
		{"broker list", []string{" k1:9092", "k2:9092 ", "k1:9092"}, []string{"k1:9092", "k2:9092"}},
		{"blanks dropped", []string{"", "  ", "npq"}, []string{"npq"}},
		{"case is significant", []string{"NPQ", "npq"}, []string{"NPQ", "npq"}},
		{"only blanks", []string{" ", ""}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeByFoldsOnKey(t *testing.T) {
	fold := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	got := DedupeBy([]string{" Ann", "ANN", "anne ", ""}, fold)

	assert.Equal(t, []string{"ann", "anne"}, got)
}

package genres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		input string
		want  string
		found bool
	}{
		{input: "Jazz", want: "Jazz", found: true},
		{input: "jazz", want: "Jazz", found: true},
		{input: "  rnb ", want: "RnB", found: true},
		{input: "Polka", found: false},
		{input: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Lookup(tt.input)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalogueHasNoDuplicates(t *testing.T) {
	seen := map[string]bool{}
	for _, g := range All {
		assert.False(t, seen[g], "duplicate genre %s", g)
		seen[g] = true
	}
}

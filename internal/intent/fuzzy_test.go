// internal/intent/fuzzy_test.go
package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "today", 5},
		{"today", "", 5},
		{"today", "today", 0},
		{"today", "todey", 1},
		{"today", "tody", 1},
		{"kitten", "sitting", 3},
		{"bugun", "bugün", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, EditDistance(tt.a, tt.b))
		})
	}
}

func TestEditDistance_Properties(t *testing.T) {
	words := []string{"", "a", "today", "todey", "weekly plan", "haftalik", "mülakat", "interview"}

	for _, a := range words {
		assert.Equal(t, 0, EditDistance(a, a), "identity for %q", a)
		for _, b := range words {
			assert.Equal(t, EditDistance(a, b), EditDistance(b, a), "symmetry for %q/%q", a, b)
		}
	}
}

func TestIsCloseMatch(t *testing.T) {
	tests := []struct {
		input, target string
		expected      bool
	}{
		{"today", "todey", true},
		{"TODAY", "today", true},
		{"tody", "today", true},
		{"tdy", "today", true},
		{"today", "tomorrow", false},
		{"bugün", "bugun", true},
		{"weekly", "weekly plan", false},
		{"week", "weekly", true},
		{"", "today", false},
	}

	for _, tt := range tests {
		t.Run(tt.input+"_"+tt.target, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsCloseMatch(tt.input, tt.target))
		})
	}
}

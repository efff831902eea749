package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStringSimilarity tests the normalized edit-distance similarity function.
func TestStringSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"both empty", "", "", 1.0},
		{"identical", "hello", "hello", 1.0},
		{"one empty", "hello", "", 0.0},
		{"totally different same length", "abc", "xyz", 0.0},
		{"single edit", "kitten", "kitteo", 5.0 / 6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expected, StringSimilarity(tt.a, tt.b), 0.0001)
		})
	}
}

// TestStringSimilarity_Symmetric tests that similarity does not depend on argument order.
func TestStringSimilarity_Symmetric(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StringSimilarity("kitten", "sitting"), StringSimilarity("sitting", "kitten"))
}

// TestLevenshtein tests the underlying edit-distance function directly.
func TestLevenshtein(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, levenshtein([]rune("kitten"), []rune("sitting")))
	assert.Equal(t, 0, levenshtein([]rune("same"), []rune("same")))
	assert.Equal(t, 4, levenshtein([]rune(""), []rune("abcd")))
}

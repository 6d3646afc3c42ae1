package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "lowercases and collapses whitespace",
			input:    "Gestión   de NÓMINAS",
			expected: "gestion nominas",
		},
		{
			name:     "strips punctuation",
			input:    "envío de newsletters, promociones y ofertas!",
			expected: "envio newsletters promociones ofertas",
		},
		{
			name:     "drops stop words and short tokens",
			input:    "el tratamiento de los datos en la empresa",
			expected: "tratamiento datos empresa",
		},
		{
			name:     "folds diacritics",
			input:    "campañas de promoción",
			expected: "campanas promocion",
		},
		{
			name:     "only noise",
			input:    "y de el la !!",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestTokens(t *testing.T) {
	assert.Nil(t, Tokens(""))
	assert.Equal(t, []string{"gestion", "nominas"}, Tokens("gestión de nóminas"))
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"", "", 0},
		{"flaw", "lawn", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LevenshteinDistance(tt.a, tt.b), "distance(%q, %q)", tt.a, tt.b)
		assert.Equal(t, tt.expected, LevenshteinDistance(tt.b, tt.a), "distance must be symmetric for (%q, %q)", tt.a, tt.b)
	}
}

func TestSimilarity(t *testing.T) {
	// Both empty strings are identical.
	assert.Equal(t, 1.0, Similarity("", ""))

	// Empty vs non-empty is fully dissimilar.
	assert.Equal(t, 0.0, Similarity("", "abc"))

	// Identical strings score 1.
	assert.Equal(t, 1.0, Similarity("tratamiento", "tratamiento"))

	// Canonical example: (7-3)/7.
	assert.InDelta(t, 4.0/7.0, Similarity("kitten", "sitting"), 1e-12)
}

func TestSimilaritySymmetricAndBounded(t *testing.T) {
	pairs := [][2]string{
		{"gestion nominas", "gestion nominas empleados"},
		{"marketing", "logistica"},
		{"", "conservacion"},
		{"a", "b"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		assert.Equal(t, ab, ba, "similarity(%q, %q) must be symmetric", p[0], p[1])
		assert.GreaterOrEqual(t, ab, 0.0)
		assert.LessOrEqual(t, ab, 1.0)
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []string
		expected float64
	}{
		{
			name:     "both empty",
			a:        nil,
			b:        nil,
			expected: 1.0,
		},
		{
			name:     "one empty",
			a:        []string{"salud"},
			b:        nil,
			expected: 0.0,
		},
		{
			name:     "identical sets",
			a:        []string{"salud", "laborales"},
			b:        []string{"laborales", "salud"},
			expected: 1.0,
		},
		{
			name:     "half overlap",
			a:        []string{"salud", "laborales", "economicos"},
			b:        []string{"salud", "laborales", "biometricos"},
			expected: 0.5,
		},
		{
			name:     "case insensitive",
			a:        []string{"Salud"},
			b:        []string{"salud"},
			expected: 1.0,
		},
		{
			name:     "duplicates collapse",
			a:        []string{"salud", "salud"},
			b:        []string{"salud"},
			expected: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Jaccard(tt.a, tt.b))
			assert.Equal(t, tt.expected, Jaccard(tt.b, tt.a), "jaccard must be symmetric")
		})
	}
}

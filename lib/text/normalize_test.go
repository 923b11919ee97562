package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCasing(t *testing.T) {
	tests := []struct {
		word     string
		expected CasingPattern
	}{
		{"dem", Lower},
		{"DEM", Upper},
		{"Dem", Title},
		{"D", Title},
		{"dEm", Mixed},
		{"deM", Mixed},
		{"ÄNDA", Upper},
		{"Ända", Title},
		{"123", Lower},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Casing(tt.word), tt.word)
	}
}

func TestCanonicalCasing(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "irregular capitalisations are lowercased",
			input:    "dE gillar deM och DeM",
			expected: "de gillar dem och dem",
		},
		{
			name:     "regular capitalisations are kept",
			input:    "De gillar DEM och dem",
			expected: "De gillar DEM och dem",
		},
		{
			name:     "words outside the family are untouched",
			input:    "DeMokrati och dEn",
			expected: "DeMokrati och dEn",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CanonicalCasing(tt.input), tt.name)
	}
}

func TestLowerConfusables(t *testing.T) {
	input := "DE sa att Dem ÄNDA var Där"
	output := LowerConfusables(input)

	assert.Equal(t, "de sa att dem ända var Där", output)
	assert.Equal(t, len(input), len(output))
}

func TestStripPictographs(t *testing.T) {
	assert.Equal(t, "De är bäst ", StripPictographs("De är bäst 👮🚓"))
	assert.Equal(t, "tummen upp", StripPictographs("tummen 👍🏽upp"))
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "de är här", CollapseSpaces("  de   är\n\t här "))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "de är x2\n", Normalize("de är x²\u0007\n"))
}

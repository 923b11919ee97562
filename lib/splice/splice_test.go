package splice

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/text"
)

func annotation(sentence string, start, end int, corrected string, score float64) lib.MistakeAnnotation {
	return lib.MistakeAnnotation{
		Start:         start,
		End:           end,
		SurfaceWord:   sentence[start:end],
		CorrectedWord: corrected,
		Label:         strings.ToUpper(corrected),
		Score:         score,
	}
}

func TestMatchCase(t *testing.T) {
	tests := []struct {
		original   string
		correction string
		expected   string
	}{
		{"DEM", "de", "DE"},
		{"De", "dem", "Dem"},
		{"de", "dem", "dem"},
		{"Dem", "de", "De"},
		{"DE", "dem", "DEM"},
		{"dE", "dem", "dem"},
		{"ENDA", "ända", "ÄNDA"},
		{"Enda", "ända", "Ända"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, MatchCase(tt.original, tt.correction), tt.original+" -> "+tt.correction)
	}
}

func TestSpliceThreeAnnotations(t *testing.T) {
	sentence := "Dem sa att de skulle ge DE böckerna"
	annotations := []lib.MistakeAnnotation{
		annotation(sentence, 0, 3, "de", 0.9912),
		annotation(sentence, 11, 13, "dem", 0.9951),
		annotation(sentence, 24, 26, "dem", 0.99999),
	}

	actual, err := Splice(sentence, annotations, Options{ShowConfidence: true})
	require.NoError(t, err)
	assert.Equal(t, "~~Dem~~ **De (99.12%)** sa att ~~de~~ **dem (99.51%)** skulle ge ~~DE~~ **DEM (100.00%)** böckerna", actual.Text)
	assert.Equal(t, sentence, actual.Original)
	assert.Equal(t, annotations, actual.Mistakes)

	// every inserted correction is found in order by scanning forward.
	position := 0
	for _, a := range annotations {
		markup := Markup(a, Options{ShowConfidence: true})
		index := strings.Index(actual.Text[position:], markup)
		require.GreaterOrEqual(t, index, 0, markup)
		position += index + len(markup)
	}
}

func TestSpliceWithoutConfidence(t *testing.T) {
	sentence := "jag såg de igår"
	actual, err := Splice(sentence, []lib.MistakeAnnotation{annotation(sentence, 9, 11, "dem", 0.99)}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "jag såg ~~de~~ **dem** igår", actual.Text)
}

func TestSpliceOrdersAnnotations(t *testing.T) {
	sentence := "de och de"
	annotations := []lib.MistakeAnnotation{
		annotation(sentence, 7, 9, "dem", 0.99),
		annotation(sentence, 0, 2, "dem", 0.99),
	}

	actual, err := Splice(sentence, annotations, Options{})
	require.NoError(t, err)
	assert.Equal(t, "~~de~~ **dem** och ~~de~~ **dem**", actual.Text)
	assert.Equal(t, 0, actual.Mistakes[0].Start)
}

func TestSpliceNothing(t *testing.T) {
	actual, err := Splice("de gick hem", nil, Options{})
	assert.NoError(t, err)
	assert.Nil(t, actual)
}

func TestSpliceRejectsBadAnnotations(t *testing.T) {
	sentence := "dem gick hem"
	tests := []struct {
		name        string
		annotations []lib.MistakeAnnotation
		expected    error
	}{
		{
			name:        "overlapping",
			annotations: []lib.MistakeAnnotation{annotation(sentence, 0, 3, "de", 0.99), annotation(sentence, 1, 3, "de", 0.99)},
			expected:    ErrOverlappingAnnotations,
		},
		{
			name:        "outside the sentence",
			annotations: []lib.MistakeAnnotation{{Start: 10, End: 20, CorrectedWord: "de"}},
			expected:    ErrMalformedAnnotation,
		},
		{
			name:        "empty span",
			annotations: []lib.MistakeAnnotation{{Start: 2, End: 2, CorrectedWord: "de"}},
			expected:    ErrMalformedAnnotation,
		},
		{
			name:        "surface word does not match",
			annotations: []lib.MistakeAnnotation{{Start: 4, End: 8, SurfaceWord: "dem", CorrectedWord: "de"}},
			expected:    ErrMalformedAnnotation,
		},
	}
	for _, tt := range tests {
		_, err := Splice(sentence, tt.annotations, Options{})
		assert.True(t, errors.Is(err, tt.expected), tt.name)
	}
}

func TestCorrect(t *testing.T) {
	sentence := "Dem sa att de skulle ge DE böckerna"
	annotations := []lib.MistakeAnnotation{
		annotation(sentence, 0, 3, "de", 0.99),
		annotation(sentence, 11, 13, "dem", 0.99),
		annotation(sentence, 24, 26, "dem", 0.99),
	}

	corrected, spans, err := Correct(sentence, annotations)
	require.NoError(t, err)
	assert.Equal(t, "De sa att dem skulle ge DEM böckerna", corrected)
	assert.Equal(t, []Span{
		{Start: 0, End: 2, Word: "De"},
		{Start: 10, End: 13, Word: "dem"},
		{Start: 24, End: 27, Word: "DEM"},
	}, spans)
	for _, span := range spans {
		assert.Equal(t, span.Word, corrected[span.Start:span.End])
	}
	assert.NoError(t, Verify(sentence, corrected, annotations, spans))
}

func TestVerifyRejectsUnannotatedEdits(t *testing.T) {
	sentence := "de gick hem"
	annotations := []lib.MistakeAnnotation{annotation(sentence, 0, 2, "dem", 0.99)}

	err := Verify(sentence, "dem gick hit", annotations, []Span{{Start: 0, End: 3, Word: "dem"}})
	assert.True(t, errors.Is(err, ErrUnannotatedEdit))

	err = Verify(sentence, "dem gick hem", annotations, nil)
	assert.True(t, errors.Is(err, ErrUnannotatedEdit))
}

func TestVerifyAdjacentLookalikes(t *testing.T) {
	sentence := "ge de dem dem vill ha"
	annotations := []lib.MistakeAnnotation{
		annotation(sentence, 3, 5, "dem", 0.99),
		annotation(sentence, 6, 9, "de", 0.99),
		annotation(sentence, 10, 13, "de", 0.99),
	}

	corrected, spans, err := Correct(sentence, annotations)
	require.NoError(t, err)
	assert.Equal(t, "ge dem de de vill ha", corrected)
	assert.NoError(t, Verify(sentence, corrected, annotations, spans))
}

func TestSplicedMarkupHasNoTargets(t *testing.T) {
	sentence := "de sa att dem kom"
	actual, err := Splice(sentence, []lib.MistakeAnnotation{
		annotation(sentence, 0, 2, "dem", 0.99),
		annotation(sentence, 10, 13, "de", 0.99),
	}, Options{ShowConfidence: true})
	require.NoError(t, err)
	assert.False(t, text.ContainsTarget(actual.Text))
}

func TestApply(t *testing.T) {
	out, spans, err := Apply("They gave them the book", []Edit{
		{Start: 0, End: 4, Text: "~~Them~~ **They**"},
		{Start: 10, End: 14, Text: "~~they~~ **them**"},
	})
	require.NoError(t, err)
	assert.Equal(t, "~~Them~~ **They** gave ~~they~~ **them** the book", out)
	assert.Equal(t, "~~they~~ **them**", out[spans[1].Start:spans[1].End])

	_, _, err = Apply("They gave them", []Edit{{Start: 5, End: 9, Text: "x"}, {Start: 0, End: 6, Text: "y"}})
	assert.True(t, errors.Is(err, ErrOverlappingAnnotations))
}

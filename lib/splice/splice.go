/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package splice

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/text"
)

var (
	ErrOverlappingAnnotations = errors.New("overlapping annotations")
	ErrMalformedAnnotation    = errors.New("malformed annotation")
)

// MatchCase renders correction with the casing of original. Irregular casings fall back
// to lower case.
func MatchCase(original, correction string) string {
	// casers keep state, they can't be shared.
	switch text.Casing(original) {
	case text.Upper:
		return cases.Upper(language.Swedish).String(correction)
	case text.Title:
		return cases.Title(language.Swedish).String(correction)
	default:
		return cases.Lower(language.Swedish).String(correction)
	}
}

type Options struct {
	// ShowConfidence appends the score of each correction as a percentage.
	ShowConfidence bool
}

// Markup renders the inline correction for a.
func Markup(a lib.MistakeAnnotation, opts Options) string {
	corrected := MatchCase(a.SurfaceWord, a.CorrectedWord)
	if opts.ShowConfidence {
		return fmt.Sprintf("~~%s~~ **%s (%.2f%%)**", a.SurfaceWord, corrected, a.Score*100)
	}
	return fmt.Sprintf("~~%s~~ **%s**", a.SurfaceWord, corrected)
}

// Splice rewrites sentence with every annotation replaced by its markup. It returns nil
// when there is nothing to correct.
func Splice(sentence string, annotations []lib.MistakeAnnotation, opts Options) (*lib.AnnotatedSentence, error) {
	if len(annotations) == 0 {
		return nil, nil
	}
	ordered, err := checked(sentence, annotations)
	if err != nil {
		return nil, err
	}
	out, _, err := Apply(sentence, edits(ordered, func(a lib.MistakeAnnotation) string {
		return Markup(a, opts)
	}))
	if err != nil {
		return nil, err
	}
	return &lib.AnnotatedSentence{
		Original: sentence,
		Text:     out,
		Mistakes: ordered,
	}, nil
}

// Span locates a corrected word in a corrected sentence.
type Span struct {
	Start int
	End   int
	Word  string
}

// Correct returns sentence with the corrections applied and no markup, together with
// where each corrected word ended up.
func Correct(sentence string, annotations []lib.MistakeAnnotation) (string, []Span, error) {
	ordered, err := checked(sentence, annotations)
	if err != nil {
		return "", nil, err
	}
	return Apply(sentence, edits(ordered, func(a lib.MistakeAnnotation) string {
		return MatchCase(a.SurfaceWord, a.CorrectedWord)
	}))
}

// Edit replaces [Start,End) of a string with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

func edits(ordered []lib.MistakeAnnotation, replacement func(lib.MistakeAnnotation) string) []Edit {
	res := make([]Edit, len(ordered))
	for i, a := range ordered {
		res[i] = Edit{Start: a.Start, End: a.End, Text: replacement(a)}
	}
	return res
}

// Apply performs edits left to right on the partially rewritten string. offset is how
// far that string has drifted from the original coordinates. Edits must be sorted and
// must not overlap.
func Apply(in string, edits []Edit) (string, []Span, error) {
	out := in
	spans := make([]Span, 0, len(edits))
	offset := 0
	for i, e := range edits {
		if e.Start < 0 || e.End > len(in) || e.Start > e.End {
			return "", nil, fmt.Errorf("%w: [%d,%d) in %q", ErrMalformedAnnotation, e.Start, e.End, in)
		}
		if i > 0 && e.Start < edits[i-1].End {
			return "", nil, fmt.Errorf("%w: [%d,%d) and [%d,%d) in %q", ErrOverlappingAnnotations, edits[i-1].Start, edits[i-1].End, e.Start, e.End, in)
		}
		start, end := e.Start+offset, e.End+offset
		out = out[:start] + e.Text + out[end:]
		spans = append(spans, Span{Start: start, End: start + len(e.Text), Word: e.Text})
		offset += len(e.Text) - (e.End - e.Start)
	}
	return out, spans, nil
}

func checked(sentence string, annotations []lib.MistakeAnnotation) ([]lib.MistakeAnnotation, error) {
	ordered := make([]lib.MistakeAnnotation, len(annotations))
	copy(ordered, annotations)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})
	for i, a := range ordered {
		if a.Start < 0 || a.End > len(sentence) || a.Start >= a.End {
			return nil, fmt.Errorf("%w: [%d,%d) in %q", ErrMalformedAnnotation, a.Start, a.End, sentence)
		}
		if a.SurfaceWord != "" && sentence[a.Start:a.End] != a.SurfaceWord {
			return nil, fmt.Errorf("%w: expected %q at [%d,%d) in %q", ErrMalformedAnnotation, a.SurfaceWord, a.Start, a.End, sentence)
		}
		if i > 0 && a.Start < ordered[i-1].End {
			return nil, fmt.Errorf("%w: [%d,%d) and [%d,%d) in %q", ErrOverlappingAnnotations, ordered[i-1].Start, ordered[i-1].End, a.Start, a.End, sentence)
		}
	}
	return ordered, nil
}

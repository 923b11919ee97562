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

package align

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/splice"
)

// Reasons an alignment was rejected.
const (
	ReasonSourceTokenNotFound = "corrected word is not a token of the translation model"
	ReasonNoAttention         = "no attention for the corrected word"
	ReasonLexicalMismatch     = "translation is not in the expected lexical class"
	ReasonAmbiguous           = "translated word claimed by more than one correction"
)

var ErrAttentionShape = errors.New("unexpected cross attention shape")

// SentenceAlignment is the bilingual check of one corrected sentence. Hint is only set
// when every correction of the sentence was matched.
type SentenceAlignment struct {
	Original    string                `json:"original"`
	Corrected   string                `json:"corrected"`
	Translation string                `json:"translation"`
	Results     []lib.AlignmentResult `json:"results"`
	Hint        string                `json:"hint,omitempty"`
}

func (s SentenceAlignment) Matched() bool {
	return s.Hint != ""
}

// Alignment holds the sentence alignments of a whole comment.
type Alignment struct {
	Sentences []SentenceAlignment `json:"sentences"`
	// Bilingual is true when at least one sentence has a hint.
	Bilingual bool `json:"bilingual"`
}

type Aligner struct {
	translator Translator
	tokenizer  Tokenizer
	lexicon    Lexicon
	layer      int
}

// New returns an Aligner reading the cross attention of the given decoder layer.
// Negative layers count from the last one. A nil tokenizer uses the source tokens
// returned by the translator.
func New(translator Translator, tokenizer Tokenizer, lexicon Lexicon, layer int) *Aligner {
	return &Aligner{
		translator: translator,
		tokenizer:  tokenizer,
		lexicon:    lexicon,
		layer:      layer,
	}
}

// Align checks every sentence that has annotations. Failures only remove the bilingual
// hint of the sentence they happen in.
func (a *Aligner) Align(ctx context.Context, sentences []string, annotations [][]lib.MistakeAnnotation) Alignment {
	var res Alignment
	for i, sentence := range sentences {
		if i >= len(annotations) || len(annotations[i]) == 0 {
			continue
		}
		sa, err := a.AlignSentence(ctx, sentence, annotations[i])
		if err != nil {
			log.Warn().Err(err).Str("sentence", sentence).Msg("could not align sentence")
			continue
		}
		for _, r := range sa.Results {
			if !r.Matched {
				log.Debug().Str("sentence", sentence).Str("word", r.SourceAnnotation.SurfaceWord).Str("target", r.TargetWord).Str("reason", r.Reason).Msg("alignment rejected")
			}
		}
		res.Sentences = append(res.Sentences, *sa)
		res.Bilingual = res.Bilingual || sa.Matched()
	}
	return res
}

// AlignSentence translates the corrected sentence and maps every correction to the word
// of the translation it attends to the most.
func (a *Aligner) AlignSentence(ctx context.Context, sentence string, annotations []lib.MistakeAnnotation) (*SentenceAlignment, error) {
	ordered := make([]lib.MistakeAnnotation, len(annotations))
	copy(ordered, annotations)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	corrected, spans, err := splice.Correct(sentence, ordered)
	if err != nil {
		return nil, err
	}

	translation, err := a.translator.Translate(ctx, corrected)
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}

	sourceTokens := translation.SourceTokens
	if a.tokenizer != nil {
		if sourceTokens, err = a.tokenizer.Tokenize(corrected); err != nil {
			return nil, fmt.Errorf("tokenize: %w", err)
		}
	}
	sourcePieces := locate(corrected, sourceTokens)

	attention, err := averageHeads(translation.CrossAttention, a.layer)
	if err != nil {
		return nil, err
	}

	text, targetPieces := detokenize(translation.TargetTokens)

	results := make([]lib.AlignmentResult, len(ordered))
	for i, annotation := range ordered {
		results[i] = a.alignWord(annotation, spans[i], sourcePieces, attention, targetPieces)
	}
	markAmbiguous(results)

	sa := &SentenceAlignment{
		Original:    sentence,
		Corrected:   corrected,
		Translation: text,
		Results:     results,
	}
	for _, r := range results {
		if !r.Matched {
			return sa, nil
		}
	}
	if sa.Hint, err = a.hint(text, results, targetPieces); err != nil {
		return nil, err
	}
	return sa, nil
}

func (a *Aligner) alignWord(annotation lib.MistakeAnnotation, span splice.Span, sourcePieces []Piece, attention [][]float64, targetPieces []Piece) lib.AlignmentResult {
	res := lib.AlignmentResult{SourceAnnotation: annotation, TargetTokenIndex: -1}

	source := -1
	for i, piece := range sourcePieces {
		if piece.Start == span.Start && strings.EqualFold(piece.Word, span.Word) {
			source = i
			break
		}
	}
	if source < 0 {
		res.Reason = ReasonSourceTokenNotFound
		return res
	}

	// the first and last target positions are the decoder start and end tokens.
	if source >= len(attention) || len(attention[source]) < 3 {
		res.Reason = ReasonNoAttention
		return res
	}
	row := attention[source]
	target := 1 + argmax(row[1:len(row)-1])
	if target >= len(targetPieces) || targetPieces[target].Start < 0 {
		res.Reason = ReasonNoAttention
		return res
	}

	res.TargetTokenIndex = target
	res.TargetWord = targetPieces[target].Word
	if !a.lexicon.Expects(annotation.CorrectedWord, res.TargetWord) {
		res.Reason = ReasonLexicalMismatch
		return res
	}
	res.Matched = true
	return res
}

// markAmbiguous rejects every result whose target token is claimed more than once.
func markAmbiguous(results []lib.AlignmentResult) {
	claims := map[int]int{}
	for _, r := range results {
		if r.TargetTokenIndex >= 0 {
			claims[r.TargetTokenIndex]++
		}
	}
	for i, r := range results {
		if r.TargetTokenIndex >= 0 && claims[r.TargetTokenIndex] > 1 {
			results[i].Matched = false
			results[i].Reason = ReasonAmbiguous
		}
	}
}

// hint splices the translation at the matched tokens, striking through the word a wrong
// choice would have produced.
func (a *Aligner) hint(text string, results []lib.AlignmentResult, targetPieces []Piece) (string, error) {
	edits := make([]splice.Edit, 0, len(results))
	for _, r := range results {
		piece := targetPieces[r.TargetTokenIndex]
		replacement := fmt.Sprintf("**%s**", piece.Word)
		if counterpart, ok := a.lexicon.Counterpart(piece.Word); ok {
			replacement = fmt.Sprintf("~~%s~~ **%s**", splice.MatchCase(piece.Word, counterpart), piece.Word)
		}
		edits = append(edits, splice.Edit{Start: piece.Start, End: piece.End, Text: replacement})
	}
	sort.Slice(edits, func(i, j int) bool {
		return edits[i].Start < edits[j].Start
	})
	out, _, err := splice.Apply(text, edits)
	return out, err
}

// averageHeads returns the attention of one layer averaged over its heads, indexed
// [source position][target position].
func averageHeads(crossAttention [][][][]float64, layer int) ([][]float64, error) {
	if layer < 0 {
		layer += len(crossAttention)
	}
	if layer < 0 || layer >= len(crossAttention) {
		return nil, fmt.Errorf("%w: layer %d of %d", ErrAttentionShape, layer, len(crossAttention))
	}
	heads := crossAttention[layer]
	if len(heads) == 0 {
		return nil, fmt.Errorf("%w: layer %d has no heads", ErrAttentionShape, layer)
	}

	avg := make([][]float64, len(heads[0]))
	for s := range avg {
		avg[s] = make([]float64, len(heads[0][s]))
	}
	for h, head := range heads {
		if len(head) != len(avg) {
			return nil, fmt.Errorf("%w: head %d has %d source positions, expected %d", ErrAttentionShape, h, len(head), len(avg))
		}
		for s, row := range head {
			if len(row) != len(avg[s]) {
				return nil, fmt.Errorf("%w: head %d has %d target positions, expected %d", ErrAttentionShape, h, len(row), len(avg[s]))
			}
			for t, v := range row {
				avg[s][t] += v / float64(len(heads))
			}
		}
	}
	return avg, nil
}

func argmax(row []float64) int {
	best := 0
	for i, v := range row {
		if v > row[best] {
			best = i
		}
	}
	return best
}

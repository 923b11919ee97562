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

package lib

import (
	"strings"
)

// Mistake types. de, dem, enda and ända mistakes are counted under the word that was
// written; det mistakes are counted under the predicted label.
const (
	TypeDe   = "de"
	TypeDem  = "dem"
	TypeDet  = "det"
	TypeEnda = "enda"
	TypeAnda = "ända"
)

// Prediction is one span returned by a token classifier. Start and End are byte offsets
// into the sentence that was classified.
type Prediction struct {
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Word   string  `json:"word"`
	Entity string  `json:"entity"`
	Score  float64 `json:"score"`
}

// SentenceCandidate is a normalised sentence that plausibly contains a confusable word.
type SentenceCandidate struct {
	Text            string `json:"text"`
	SourceCommentID string `json:"sourceCommentId"`
}

// MistakeAnnotation is a flagged word. Start and End index the original sentence.
type MistakeAnnotation struct {
	Start         int     `json:"start"`
	End           int     `json:"end"`
	SurfaceWord   string  `json:"surfaceWord"`
	CorrectedWord string  `json:"correctedWord"`
	Label         string  `json:"label"`
	Score         float64 `json:"score"`
}

// NewAnnotation builds the annotation for a prediction over sentence. The surface word is
// read from the sentence itself so that it keeps the writer's casing.
func NewAnnotation(sentence string, p Prediction) MistakeAnnotation {
	surface := p.Word
	if p.Start >= 0 && p.End <= len(sentence) && p.Start < p.End {
		surface = sentence[p.Start:p.End]
	}
	return MistakeAnnotation{
		Start:         p.Start,
		End:           p.End,
		SurfaceWord:   surface,
		CorrectedWord: strings.ToLower(p.Entity),
		Label:         p.Entity,
		Score:         p.Score,
	}
}

// Type returns the mistake type the annotation is counted under.
func (a MistakeAnnotation) Type() string {
	if strings.EqualFold(a.Label, TypeDet) {
		return TypeDet
	}
	return strings.ToLower(a.SurfaceWord)
}

// AnnotatedSentence is the output of the correction splicer.
type AnnotatedSentence struct {
	Original string              `json:"original"`
	Text     string              `json:"text"`
	Mistakes []MistakeAnnotation `json:"mistakes"`
}

// AlignmentResult links a corrected word to its counterpart in the translated sentence.
// Results with Matched set to false must never reach a reply.
type AlignmentResult struct {
	SourceAnnotation MistakeAnnotation `json:"sourceAnnotation"`
	TargetWord       string            `json:"targetWord"`
	TargetTokenIndex int               `json:"targetTokenIndex"`
	Matched          bool              `json:"matched"`
	Reason           string            `json:"reason,omitempty"`
}

// MistakeCounts counts mistakes per type.
type MistakeCounts map[string]int

// Total is the number of mistakes over all types.
func (m MistakeCounts) Total() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// CountMistakes tallies the annotations of every sentence of a comment.
func CountMistakes(annotations [][]MistakeAnnotation) MistakeCounts {
	counts := MistakeCounts{}
	for _, sentence := range annotations {
		for _, a := range sentence {
			counts[a.Type()]++
		}
	}
	return counts
}

// ReplyCandidate is one comment together with the thread it was posted in.
type ReplyCandidate struct {
	ID             string                `json:"id"`
	ThreadID       string                `json:"threadId"`
	Author         string                `json:"author,omitempty"`
	Permalink      string                `json:"permalink,omitempty"`
	ThreadAgeHours float64               `json:"threadAgeHours"`
	IsLocked       bool                  `json:"isLocked"`
	ThreadFlair    string                `json:"threadFlair"`
	ThreadTitle    string                `json:"threadTitle"`
	MistakeCounts  MistakeCounts         `json:"mistakeCounts"`
	Sentences      []SentenceCandidate   `json:"sentences"`
	Annotations    [][]MistakeAnnotation `json:"annotations"`
	ReplyAttempted bool                  `json:"replyAttempted"`
}

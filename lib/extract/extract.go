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

package extract

import (
	"strings"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/text"
)

// DefaultMetaPhrases are phrases used when people discuss the de/dem rule itself.
var DefaultMetaPhrases = []string{
	"de och dem",
	"dem och de",
	"de/dem",
	"dem/de",
	"de eller dem",
	"dem eller de",
}

type Extractor struct {
	metaPhrases []string
}

// New returns an Extractor that discards sentences containing any of metaPhrases.
// Matching is case-insensitive. A nil slice selects DefaultMetaPhrases.
func New(metaPhrases []string) Extractor {
	if metaPhrases == nil {
		metaPhrases = DefaultMetaPhrases
	}
	lowered := make([]string, 0, len(metaPhrases))
	for _, phrase := range metaPhrases {
		if phrase = strings.ToLower(strings.TrimSpace(phrase)); phrase != "" {
			lowered = append(lowered, phrase)
		}
	}
	return Extractor{metaPhrases: lowered}
}

// Extract splits a comment body into the sentences worth sending to the classifier.
func (e Extractor) Extract(commentID, body string) []lib.SentenceCandidate {
	var candidates []lib.SentenceCandidate
	for _, sentence := range text.Sentences(text.StripQuotes(body)) {
		// people don't always punctuate, so lines count as sentences too.
		for _, line := range text.Lines(sentence) {
			cleaned := e.clean(line)
			if !e.keep(cleaned) {
				continue
			}
			candidates = append(candidates, lib.SentenceCandidate{
				Text:            cleaned,
				SourceCommentID: commentID,
			})
		}
	}
	return candidates
}

func (e Extractor) clean(line string) string {
	line = text.StripPictographs(line)
	line = text.Normalize(line)
	line = text.CollapseSpaces(line)
	return text.CanonicalCasing(line)
}

func (e Extractor) keep(sentence string) bool {
	if len(text.Words(sentence)) < 2 {
		return false
	}
	if e.isMeta(sentence) {
		return false
	}
	return text.ContainsTarget(sentence)
}

func (e Extractor) isMeta(sentence string) bool {
	lowered := strings.ToLower(sentence)
	for _, phrase := range e.metaPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

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

package filter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/blocklist"
)

const (
	// AnalysisThreshold is used when choosing what to reply to.
	AnalysisThreshold = 0.985
	// DemoThreshold is used by the interactive API.
	DemoThreshold = 0.98
)

// Filter drops predictions that are not confident enough or that fall on usages where
// either form is acceptable. Offsets always refer to the unmodified sentence.
type Filter struct {
	threshold float64
	blocklist blocklist.Blocklist
}

func New(threshold float64, bl blocklist.Blocklist) Filter {
	return Filter{threshold: threshold, blocklist: bl}
}

// Keep reports whether prediction survives thresholding and the heuristics.
func (f Filter) Keep(sentence string, prediction lib.Prediction) bool {
	if prediction.Score <= f.threshold {
		return false
	}
	if prediction.Start < 0 || prediction.End > len(sentence) || prediction.Start >= prediction.End {
		return false
	}
	word := sentence[prediction.Start:prediction.End]
	if isDeDem(word) && followedBySom(sentence, prediction.End) {
		log.Debug().Str("sentence", sentence).Int("start", prediction.Start).Msg("suppressed before som")
		return false
	}
	if !f.blocklist.Allowed(word) {
		log.Debug().Str("sentence", sentence).Int("start", prediction.Start).Msg("suppressed colloquial spelling")
		return false
	}
	return true
}

// Predictions returns the predictions that survive, in their original order.
func (f Filter) Predictions(sentence string, predictions []lib.Prediction) []lib.Prediction {
	var res []lib.Prediction
	for _, p := range predictions {
		if f.Keep(sentence, p) {
			res = append(res, p)
		}
	}
	return res
}

// Annotate filters predictions and turns the survivors into mistake annotations.
func (f Filter) Annotate(sentence string, predictions []lib.Prediction) []lib.MistakeAnnotation {
	var res []lib.MistakeAnnotation
	for _, p := range f.Predictions(sentence, predictions) {
		res = append(res, lib.NewAnnotation(sentence, p))
	}
	return res
}

func isDeDem(word string) bool {
	return strings.EqualFold(word, "de") || strings.EqualFold(word, "dem")
}

// followedBySom is true when " som" follows end as a whole word.
func followedBySom(sentence string, end int) bool {
	const som = " som"
	if end+len(som) > len(sentence) {
		return false
	}
	if !strings.EqualFold(sentence[end:end+len(som)], som) {
		return false
	}
	next, _ := utf8.DecodeRuneInString(sentence[end+len(som):])
	return next == utf8.RuneError || !(unicode.IsLetter(next) || unicode.IsDigit(next))
}

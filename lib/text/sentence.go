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

package text

import (
	"strings"

	"github.com/rivo/uniseg"
)

// abbreviations are Swedish abbreviations that end in a full stop but rarely end a
// sentence. A sentence boundary directly after one of them is undone.
var abbreviations = map[string]struct{}{
	"t.ex.":  {},
	"bl.a.":  {},
	"s.k.":   {},
	"d.v.s.": {},
	"dvs.":   {},
	"m.fl.":  {},
	"m.m.":   {},
	"p.g.a.": {},
	"pga.":   {},
	"f.d.":   {},
	"ca.":    {},
	"resp.":  {},
	"enl.":   {},
	"jfr.":   {},
	"kl.":    {},
	"nr.":    {},
}

// Sentences splits in into sentences following the unicode sentence boundary rules, then
// rejoins sentences that were split after a known Swedish abbreviation. Sentences keep
// their trailing whitespace; nothing is dropped, so the sentences concatenate to in.
func Sentences(in string) []string {
	var sentences []string
	state := -1
	rest := in
	var sentence string
	for len(rest) > 0 {
		sentence, rest, state = uniseg.FirstSentenceInString(rest, state)
		if n := len(sentences); n > 0 && endsWithAbbreviation(sentences[n-1]) {
			sentences[n-1] += sentence
			continue
		}
		sentences = append(sentences, sentence)
	}
	return sentences
}

func endsWithAbbreviation(sentence string) bool {
	// a paragraph break always ends a sentence.
	if strings.HasSuffix(sentence, "\n") {
		return false
	}
	fields := strings.Fields(sentence)
	if len(fields) == 0 {
		return false
	}
	_, ok := abbreviations[strings.ToLower(fields[len(fields)-1])]
	return ok
}

// Lines splits in on line breaks and drops empty lines.
func Lines(in string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(in, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

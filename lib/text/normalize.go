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
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Confusables is the family of words the model has been trained on.
var Confusables = map[string]struct{}{
	"de":   {},
	"dem":  {},
	"det":  {},
	"enda": {},
	"ända": {},
}

// IsConfusable returns true if word, ignoring case, is in the confusable family.
func IsConfusable(word string) bool {
	_, ok := Confusables[strings.ToLower(word)]
	return ok
}

// Normalize applies NFKC normalisation and drops control characters other than newlines
// and tabs.
func Normalize(in string) string {
	out := norm.NFKC.String(in)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, out)
}

// CollapseSpaces trims the string and replaces every run of whitespace by a single space.
func CollapseSpaces(in string) string {
	return strings.Join(strings.Fields(in), " ")
}

// StripPictographs removes emoji, pictographs and their joiners/modifiers.
func StripPictographs(in string) string {
	return strings.Map(func(r rune) rune {
		if isPictograph(r) {
			return -1
		}
		return r
	}, in)
}

func isPictograph(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // emoticons, pictographs, transport, flags, modifiers
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2300 && r <= 0x23FF, r >= 0x2B00 && r <= 0x2BFF:
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r == 0x200D, r == 0x20E3:
		return true
	case r >= 0xE0020 && r <= 0xE007F: // tag sequences
		return true
	}
	return false
}

// CasingPattern classifies the letter casing of a word.
type CasingPattern int

const (
	Lower CasingPattern = iota
	Upper
	Title
	Mixed
)

// Casing returns the casing pattern of the letters of word. Words without cased letters
// are Lower; a single upper case letter is Title.
func Casing(word string) CasingPattern {
	var letters []rune
	for _, r := range word {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
		}
	}
	upper := 0
	for _, r := range letters {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	switch {
	case upper == 0:
		return Lower
	case upper == 1 && unicode.IsUpper(letters[0]):
		return Title
	case upper == len(letters):
		return Upper
	}
	return Mixed
}

// CanonicalCasing lowercases confusable words written with an irregular capitalisation
// ("dE", "deM", "DeM") so a model trained on canonical spelling still recognises them.
// Lower, upper and title cased words are left untouched. Byte offsets are preserved.
func CanonicalCasing(in string) string {
	return rewriteConfusables(in, func(word string) string {
		if Casing(word) == Mixed {
			return strings.ToLower(word)
		}
		return word
	})
}

// LowerConfusables lowercases every confusable word. It is the view of a sentence that
// is sent to the classifier; byte offsets are preserved so predictions index the
// original sentence.
func LowerConfusables(in string) string {
	return rewriteConfusables(in, strings.ToLower)
}

func rewriteConfusables(in string, rewrite func(string) string) string {
	var b strings.Builder
	b.Grow(len(in))
	last := 0
	for _, w := range Words(in) {
		if !IsConfusable(w.Text) {
			continue
		}
		replacement := rewrite(w.Text)
		if len(replacement) != len(w.Text) {
			continue
		}
		b.WriteString(in[last:w.Start])
		b.WriteString(replacement)
		last = w.End
	}
	b.WriteString(in[last:])
	return b.String()
}

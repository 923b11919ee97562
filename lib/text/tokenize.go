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
	"github.com/blevesearch/segment"
)

// Word is a word segment and its byte offsets in the segmented string.
type Word struct {
	Text  string
	Start int
	End   int
}

// Words returns the letter and number segments of in, using unicode word boundaries.
// Punctuation and whitespace segments are skipped. A word such as "dem:s" or "dem's"
// is a single segment.
func Words(in string) []Word {
	var words []Word
	segmenter := segment.NewWordSegmenterDirect([]byte(in))
	position := 0
	for segmenter.Segment() {
		segmentBytes := segmenter.Bytes()
		if segmenter.Type() != segment.None {
			words = append(words, Word{
				Text:  string(segmentBytes),
				Start: position,
				End:   position + len(segmentBytes),
			})
		}
		position += len(segmentBytes)
	}
	return words
}

// markup characters surround struck-through and emphasised words in a spliced sentence.
func isMarkup(b byte) bool {
	return b == '*' || b == '~'
}

// IsStandalone returns true if in[start:end] is a whole word that is not wrapped in
// markup: it is not part of a longer word and neither preceded nor followed by '*' or '~'.
func IsStandalone(in string, start, end int) bool {
	if start < 0 || end > len(in) || start >= end {
		return false
	}
	if start > 0 && isMarkup(in[start-1]) {
		return false
	}
	if end < len(in) && isMarkup(in[end]) {
		return false
	}
	for _, w := range Words(in) {
		if w.Start == start && w.End == end {
			return true
		}
		if w.Start > start {
			break
		}
	}
	return false
}

// ContainsTarget returns true if in contains a standalone "de" or "dem" in any casing.
func ContainsTarget(in string) bool {
	for _, w := range Words(in) {
		if !isTarget(w.Text) {
			continue
		}
		if IsStandalone(in, w.Start, w.End) {
			return true
		}
	}
	return false
}

func isTarget(word string) bool {
	if len(word) != 2 && len(word) != 3 {
		return false
	}
	return equalFoldASCII(word, "de") || equalFoldASCII(word, "dem")
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// ByteOffset converts an offset counted in runes into a byte offset into in. Offsets
// past the end clamp to len(in).
func ByteOffset(in string, runeOffset int) int {
	if runeOffset <= 0 {
		return 0
	}
	n := 0
	for i := range in {
		if n == runeOffset {
			return i
		}
		n++
	}
	return len(in)
}

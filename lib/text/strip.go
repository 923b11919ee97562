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
	"regexp"
)

// quoteBlock matches a markdown quote: a line introduced by '>' and every line after it up
// to the next blank line (or the end of the text).
var quoteBlock = regexp.MustCompile(`(?m)^[ \t]*>[^\n]*(?:\n[^\n]*\S[^\n]*)*(?:\n[ \t]*\n|\n?\z)`)

var extraBlankLines = regexp.MustCompile(`\n{3,}`)

// StripQuotes removes quoted-reply blocks and squeezes the blank lines left behind.
func StripQuotes(in string) string {
	out := quoteBlock.ReplaceAllString(in, "")
	return extraBlankLines.ReplaceAllString(out, "\n\n")
}

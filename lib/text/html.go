package text

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// disallowedNodes are skipped together with everything under them. Quotes are other
// people's words and code is not prose.
var disallowedNodes = map[string]struct{}{
	"blockquote": {},
	"code":       {},
	"pre":        {},
	"script":     {},
	"style":      {},
	"noscript":   {},
	"table":      {},
}

// paragraphNodes end a paragraph when they close.
var paragraphNodes = map[string]struct{}{
	"p":   {},
	"div": {},
	"li":  {},
	"h1":  {},
	"h2":  {},
	"h3":  {},
	"h4":  {},
	"h5":  {},
	"h6":  {},
}

// HTMLToText converts a rendered comment body to plain text. Paragraphs are separated by
// a blank line, <br> becomes a line break and disallowed subtrees are dropped.
func HTMLToText(r io.Reader) (string, error) {
	htmlTokenizer := html.NewTokenizer(r)
	var b strings.Builder
	disallowedDepth := 0

	for {
		switch htmlTokenizer.Next() {
		case html.ErrorToken:
			// The html tokenizer returns an io.EOF when finished.
			if err := htmlTokenizer.Err(); err != io.EOF {
				return "", err
			}
			return strings.TrimSpace(extraBlankLines.ReplaceAllString(b.String(), "\n\n")), nil
		case html.TextToken:
			if disallowedDepth == 0 {
				b.Write(htmlTokenizer.Text())
			}
		case html.StartTagToken:
			tn, _ := htmlTokenizer.TagName()
			if _, ok := disallowedNodes[string(tn)]; ok {
				disallowedDepth++
			} else if string(tn) == "br" && disallowedDepth == 0 {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			tn, _ := htmlTokenizer.TagName()
			name := string(tn)
			if _, ok := disallowedNodes[name]; ok && disallowedDepth > 0 {
				disallowedDepth--
				continue
			}
			if _, ok := paragraphNodes[name]; ok && disallowedDepth == 0 {
				b.WriteString("\n\n")
			}
		case html.SelfClosingTagToken:
			tn, _ := htmlTokenizer.TagName()
			if string(tn) == "br" && disallowedDepth == 0 {
				b.WriteByte('\n')
			}
		}
	}
}

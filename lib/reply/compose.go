package reply

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/align"
)

const (
	paragraph = " \n\n"
	rule      = "---"
)

// summaryOrder is the order mistake types are listed in. Types not listed here follow
// in alphabetical order.
var summaryOrder = []string{lib.TypeDe, lib.TypeDem, lib.TypeEnda, lib.TypeAnda, lib.TypeDet}

type Composer struct {
	templates Templates
}

func NewComposer(templates Templates) *Composer {
	return &Composer{templates: templates}
}

// Compose renders the reply to a comment. sentences are the spliced sentences with
// markup; alignment may be empty, in which case the bilingual section is left out.
func (c *Composer) Compose(counts lib.MistakeCounts, sentences []lib.AnnotatedSentence, alignment align.Alignment) string {
	var b strings.Builder
	section := func(s string) {
		b.WriteString(s)
		b.WriteString(paragraph)
	}
	heading := func(s string) {
		section("## " + s)
	}

	section(c.Header(counts.Total()))
	section(rule)

	heading(c.templates.AnalysisHeading)
	section(c.Summary(counts))
	for _, s := range sentences {
		section("> " + s.Text)
	}
	section(c.templates.Legend)
	section(rule)

	if alignment.Bilingual {
		heading(c.templates.BilingualHeading)
		section(c.templates.BilingualIntro)
		for _, s := range alignment.Sentences {
			if !s.Matched() {
				continue
			}
			section("> " + s.Hint)
		}
		section(rule)
	}

	heading(c.templates.GuideHeading)
	section(c.Guide(counts))
	b.WriteString(rule)
	b.WriteString(paragraph)
	b.WriteString(c.templates.Footer)
	return b.String()
}

// Header picks the greeting by the number of mistakes.
func (c *Composer) Header(total int) string {
	switch {
	case total <= 1:
		return c.templates.Headers.One
	case total == 2:
		return c.templates.Headers.Two
	default:
		return c.templates.Headers.Many
	}
}

// Summary lists the mistakes per type with the noun phrases agreeing in number.
func (c *Composer) Summary(counts lib.MistakeCounts) string {
	var entries []string
	for _, t := range orderedTypes(counts) {
		n := counts[t]
		format := c.templates.Mistake.Plural
		if n == 1 {
			format = c.templates.Mistake.Singular
		}
		entries = append(entries, fmt.Sprintf(format, n, t))
	}
	return fmt.Sprintf(c.templates.Summary, join(entries, c.templates.Conjunction))
}

func (c *Composer) Guide(counts lib.MistakeCounts) string {
	if counts[lib.TypeDem] >= 2 {
		return c.templates.DemTip + paragraph + c.templates.Guide
	}
	return c.templates.Guide
}

func orderedTypes(counts lib.MistakeCounts) []string {
	seen := map[string]bool{}
	var res []string
	for _, t := range summaryOrder {
		seen[t] = true
		if counts[t] > 0 {
			res = append(res, t)
		}
	}
	var rest []string
	for t, n := range counts {
		if !seen[t] && n > 0 {
			rest = append(rest, t)
		}
	}
	sort.Strings(rest)
	return append(res, rest...)
}

// join lists entries as "a, b samt c".
func join(entries []string, conjunction string) string {
	switch len(entries) {
	case 0:
		return ""
	case 1:
		return entries[0]
	}
	last := len(entries) - 1
	return strings.Join(entries[:last], ", ") + " " + conjunction + " " + entries[last]
}

package align

import (
	"os"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Lexicon lists, per corrected word, the translations that confirm the correction, and
// per translation the word a wrong choice would have produced.
type Lexicon struct {
	Classes      map[string][]string `yaml:"classes"`
	Counterparts map[string]string   `yaml:"counterparts"`
}

func DefaultLexicon() Lexicon {
	return Lexicon{
		Classes: map[string][]string{
			"de":  {"they", "the", "those", "these"},
			"dem": {"them"},
		},
		Counterparts: map[string]string{
			"they": "them",
			"them": "they",
		},
	}
}

// LoadLexicon reads a lexicon from a YAML file, or returns DefaultLexicon when path is
// empty.
func LoadLexicon(path string) (Lexicon, error) {
	if path == "" {
		return DefaultLexicon(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, err
	}
	var lexicon Lexicon
	if err := yaml.Unmarshal(b, &lexicon); err != nil {
		return Lexicon{}, err
	}
	log.Info().Str("path", path).Int("classes", len(lexicon.Classes)).Msg("lexicon loaded")
	return lexicon, nil
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
}

// Expects reports whether target is a plausible translation of corrected.
func (l Lexicon) Expects(corrected, target string) bool {
	target = normalizeWord(target)
	for _, word := range l.Classes[strings.ToLower(corrected)] {
		if word == target {
			return true
		}
	}
	return false
}

// Counterpart returns the translation the wrong word would have had.
func (l Lexicon) Counterpart(target string) (string, bool) {
	counterpart, ok := l.Counterparts[normalizeWord(target)]
	return counterpart, ok
}

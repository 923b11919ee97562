package align

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

const (
	wordBoundary = "▁"
	unknown      = "<unk>"
)

// Tokenizer splits text the way the translation model does.
type Tokenizer interface {
	Tokenize(sentence string) ([]string, error)
}

// NewPretrainedTokenizer loads a tokenizer.json exported alongside the translation model.
func NewPretrainedTokenizer(path string) (Tokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	return &pretrainedTokenizer{tk: tk}, nil
}

type pretrainedTokenizer struct {
	tk *tokenizer.Tokenizer
}

func (p *pretrainedTokenizer) Tokenize(sentence string) ([]string, error) {
	enc, err := p.tk.EncodeSingle(sentence, true)
	if err != nil {
		return nil, err
	}
	return enc.Tokens, nil
}

// Piece is a token together with the bytes of the text it covers. Special tokens cover
// nothing and have Start and End set to -1.
type Piece struct {
	Token string
	Word  string
	Start int
	End   int
}

func isSpecial(token string) bool {
	return token != unknown && strings.HasPrefix(token, "<") && strings.HasSuffix(token, ">")
}

// locate finds the span of every sentencepiece token in the text it was produced from.
func locate(text string, tokens []string) []Piece {
	pieces := make([]Piece, len(tokens))
	position := 0
	for i, token := range tokens {
		if isSpecial(token) {
			pieces[i] = Piece{Token: token, Start: -1, End: -1}
			continue
		}
		if strings.HasPrefix(token, wordBoundary) {
			for position < len(text) {
				r, size := utf8.DecodeRuneInString(text[position:])
				if !unicode.IsSpace(r) {
					break
				}
				position += size
			}
		}

		word := strings.TrimPrefix(token, wordBoundary)
		end := position
		switch {
		case word == unknown:
			_, size := utf8.DecodeRuneInString(text[position:])
			end += size
		case strings.HasPrefix(text[position:], word):
			end += len(word)
		default:
			// normalised by the tokenizer, assume it covers as many characters.
			for n := utf8.RuneCountInString(word); n > 0 && end < len(text); n-- {
				_, size := utf8.DecodeRuneInString(text[end:])
				end += size
			}
		}
		pieces[i] = Piece{Token: token, Word: text[position:end], Start: position, End: end}
		position = end
	}
	return pieces
}

// detokenize joins generated tokens into text, recording where each token ended up.
func detokenize(tokens []string) (string, []Piece) {
	var b strings.Builder
	pieces := make([]Piece, len(tokens))
	for i, token := range tokens {
		if isSpecial(token) {
			pieces[i] = Piece{Token: token, Start: -1, End: -1}
			continue
		}
		if strings.HasPrefix(token, wordBoundary) && b.Len() > 0 {
			b.WriteByte(' ')
		}
		word := strings.TrimPrefix(token, wordBoundary)
		start := b.Len()
		b.WriteString(word)
		pieces[i] = Piece{Token: token, Word: word, Start: start, End: b.Len()}
	}
	return b.String(), pieces
}

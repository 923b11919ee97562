package pipeline

import (
	"context"
	"fmt"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/align"
	"github.com/sprakpolisen/dedem/lib/splice"
)

// Correction is the corrected form of the annotated sentences of a comment.
type Correction struct {
	Sentences []lib.AnnotatedSentence `json:"sentences"`
	Alignment align.Alignment         `json:"alignment"`
}

// Correct splices every annotated sentence and, when an aligner is configured, checks
// the corrections against a translation.
func (p *Pipeline) Correct(ctx context.Context, sentences []lib.SentenceCandidate, annotations [][]lib.MistakeAnnotation, opts splice.Options) (Correction, error) {
	var res Correction
	var texts []string
	var kept [][]lib.MistakeAnnotation
	for i, sentence := range sentences {
		if i >= len(annotations) || len(annotations[i]) == 0 {
			continue
		}
		corrected, spans, err := splice.Correct(sentence.Text, annotations[i])
		if err != nil {
			return Correction{}, fmt.Errorf("correct %q: %w", sentence.Text, err)
		}
		if err := splice.Verify(sentence.Text, corrected, annotations[i], spans); err != nil {
			return Correction{}, fmt.Errorf("verify %q: %w", sentence.Text, err)
		}

		annotated, err := splice.Splice(sentence.Text, annotations[i], opts)
		if err != nil {
			return Correction{}, fmt.Errorf("splice %q: %w", sentence.Text, err)
		}
		res.Sentences = append(res.Sentences, *annotated)
		texts = append(texts, sentence.Text)
		kept = append(kept, annotations[i])
	}

	if p.Aligner != nil {
		res.Alignment = p.Aligner.Align(ctx, texts, kept)
	}
	return res, nil
}

// Compose builds the reply to a candidate.
func (p *Pipeline) Compose(ctx context.Context, candidate lib.ReplyCandidate) (string, error) {
	correction, err := p.Correct(ctx, candidate.Sentences, candidate.Annotations, splice.Options{ShowConfidence: true})
	if err != nil {
		return "", err
	}
	if correction.Alignment.Bilingual {
		p.log.Debug().Str("comment", candidate.ID).Msg("reply has a bilingual section")
	}
	return p.Composer.Compose(candidate.MistakeCounts, correction.Sentences, correction.Alignment), nil
}

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

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/align"
	"github.com/sprakpolisen/dedem/lib/extract"
	"github.com/sprakpolisen/dedem/lib/filter"
	"github.com/sprakpolisen/dedem/lib/history"
	"github.com/sprakpolisen/dedem/lib/recogniser"
	"github.com/sprakpolisen/dedem/lib/reply"
	"github.com/sprakpolisen/dedem/lib/source"
	"github.com/sprakpolisen/dedem/lib/text"
)

// Components are the collaborators of a pipeline. Aligner may be nil, in which case
// replies never carry a bilingual section. History defaults to a client that remembers
// nothing.
type Components struct {
	Extractor extract.Extractor
	Predictor recogniser.Predictor
	Filter    filter.Filter
	Aligner   *align.Aligner
	Composer  *reply.Composer
	History   history.Client
}

type Pipeline struct {
	Components
	RunID string
	log   zerolog.Logger
	now   func() time.Time
}

// New returns a pipeline with a fresh run id.
func New(components Components) *Pipeline {
	if components.History == nil {
		components.History = history.NewNoopClient()
	}
	if components.Composer == nil {
		components.Composer = reply.NewComposer(reply.DefaultTemplates())
	}
	runID := uuid.New().String()
	return &Pipeline{
		Components: components,
		RunID:      runID,
		log:        log.With().Str("run", runID).Logger(),
		now:        time.Now,
	}
}

// Analysis holds the sentences of a comment that may contain a mistake, with the raw
// predictions and the annotations that survived filtering. The three slices are
// parallel.
type Analysis struct {
	Sentences   []lib.SentenceCandidate   `json:"sentences"`
	Predictions [][]lib.Prediction        `json:"predictions"`
	Annotations [][]lib.MistakeAnnotation `json:"annotations"`
}

// Analyze extracts candidate sentences from body and annotates the mistakes in them.
func (p *Pipeline) Analyze(ctx context.Context, commentID, body string) (Analysis, error) {
	var res Analysis
	for _, sentence := range p.Extractor.Extract(commentID, body) {
		predictions, err := p.Predictor.Predict(ctx, sentence.Text)
		if err != nil {
			return Analysis{}, fmt.Errorf("predict %s: %w", commentID, err)
		}
		res.Sentences = append(res.Sentences, sentence)
		res.Predictions = append(res.Predictions, predictions)
		res.Annotations = append(res.Annotations, p.Filter.Annotate(sentence.Text, predictions))
	}
	return res, nil
}

// Candidate turns a comment into a reply candidate. It returns nil when the comment has
// no mistakes.
func (p *Pipeline) Candidate(ctx context.Context, item source.Item) (*lib.ReplyCandidate, error) {
	body := item.Comment.Body
	if item.Comment.BodyHTML != "" {
		converted, err := text.HTMLToText(strings.NewReader(item.Comment.BodyHTML))
		if err != nil {
			p.log.Warn().Err(err).Str("comment", item.Comment.ID).Msg("could not read html body, using markdown")
		} else {
			body = converted
		}
	}

	analysis, err := p.Analyze(ctx, item.Comment.ID, body)
	if err != nil {
		return nil, err
	}

	candidate := lib.ReplyCandidate{
		ID:             item.Comment.ID,
		ThreadID:       source.ThreadKey(item.Comment.ThreadID),
		Author:         item.Comment.AuthorName(),
		Permalink:      item.Comment.Permalink,
		ThreadAgeHours: item.AgeHours,
		IsLocked:       item.Submission.Locked || item.Comment.Locked,
		ThreadFlair:    item.Submission.FlairText(),
		ThreadTitle:    item.Submission.Title,
	}
	for i, annotations := range analysis.Annotations {
		if len(annotations) == 0 {
			continue
		}
		candidate.Sentences = append(candidate.Sentences, analysis.Sentences[i])
		candidate.Annotations = append(candidate.Annotations, annotations)
	}
	if len(candidate.Annotations) == 0 {
		return nil, nil
	}
	candidate.MistakeCounts = lib.CountMistakes(candidate.Annotations)
	return &candidate, nil
}

// Candidates analyses every item. Comments without mistakes, comments with det mistakes
// and comments in threads that have already been replied to are left out.
func (p *Pipeline) Candidates(ctx context.Context, items []source.Item) ([]lib.ReplyCandidate, error) {
	var res []lib.ReplyCandidate
	seen := map[string]bool{}
	for _, item := range items {
		candidate, err := p.Candidate(ctx, item)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			continue
		}
		if candidate.MistakeCounts[lib.TypeDet] > 0 {
			p.log.Debug().Str("comment", candidate.ID).Msg("skipping comment with det mistakes")
			continue
		}

		replied, ok := seen[candidate.ThreadID]
		if !ok {
			if replied, err = p.History.Seen(ctx, candidate.ThreadID); err != nil {
				return nil, fmt.Errorf("reply history: %w", err)
			}
			seen[candidate.ThreadID] = replied
		}
		if replied {
			p.log.Debug().Str("comment", candidate.ID).Str("thread", candidate.ThreadID).Msg("already replied in thread")
			continue
		}
		res = append(res, *candidate)
	}
	p.log.Info().Int("comments", len(items)).Int("candidates", len(res)).Msg("analysed comments")
	return res, nil
}

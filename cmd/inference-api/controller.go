package main

import (
	"context"
	"io"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/pipeline"
	"github.com/sprakpolisen/dedem/lib/splice"
	"github.com/sprakpolisen/dedem/lib/text"
)

type contentType int

const (
	contentTypePlain contentType = iota
	contentTypeHTML
)

var allowedContentTypeEnumMap = map[string]contentType{
	"text/plain": contentTypePlain,
	"text/html":  contentTypeHTML,
}

// Corrections is what the demo returns for a piece of text.
type Corrections struct {
	pipeline.Analysis
	MistakeCounts lib.MistakeCounts   `json:"mistakeCounts"`
	Correction    pipeline.Correction `json:"correction"`
}

type controller struct {
	pipeline *pipeline.Pipeline
}

func (c controller) Correct(ctx context.Context, reader io.Reader, ct contentType) (*Corrections, error) {
	var body string
	switch ct {
	case contentTypeHTML:
		var err error
		if body, err = text.HTMLToText(reader); err != nil {
			return nil, err
		}
	default:
		b, err := io.ReadAll(reader)
		if err != nil {
			return nil, err
		}
		body = string(b)
	}

	analysis, err := c.pipeline.Analyze(ctx, "", body)
	if err != nil {
		return nil, NewHttpError(502, err)
	}
	correction, err := c.pipeline.Correct(ctx, analysis.Sentences, analysis.Annotations, splice.Options{ShowConfidence: true})
	if err != nil {
		return nil, err
	}
	return &Corrections{
		Analysis:      analysis,
		MistakeCounts: lib.CountMistakes(analysis.Annotations),
		Correction:    correction,
	}, nil
}

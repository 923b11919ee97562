package pipeline

import (
	"context"

	"github.com/go-openapi/strfmt"

	"github.com/sprakpolisen/dedem/lib/history"
	"github.com/sprakpolisen/dedem/lib/selector"
	"github.com/sprakpolisen/dedem/lib/source"
)

// Bounds are the thread ages in hours a reply may be posted in.
type Bounds struct {
	MinHour float64
	MaxHour float64
}

// Result is the outcome of a run.
type Result struct {
	RunID      string             `json:"runId"`
	Candidates int                `json:"candidates"`
	Delivery   *selector.Delivery `json:"delivery"`
}

// Run analyses items, replies to one of them and records the thread so that it is never
// replied to again.
func (p *Pipeline) Run(ctx context.Context, items []source.Item, bounds Bounds, poster selector.Poster) (*Result, error) {
	candidates, err := p.Candidates(ctx, items)
	if err != nil {
		return nil, err
	}

	delivery, err := selector.Deliver(ctx, candidates, bounds.MinHour, bounds.MaxHour, p.Compose, poster)
	if err != nil {
		return nil, err
	}
	p.log.Info().
		Str("comment", delivery.Candidate.ID).
		Str("thread", delivery.Candidate.ThreadID).
		Str("reply", delivery.ReplyID).
		Int("mistakes", delivery.Candidate.MistakeCounts.Total()).
		Msg("reply posted")

	entry := history.Entry{
		RunID:     p.RunID,
		ThreadID:  delivery.Candidate.ThreadID,
		CommentID: delivery.Candidate.ID,
		ReplyID:   delivery.ReplyID,
		Mistakes:  delivery.Candidate.MistakeCounts.Total(),
		Created:   strfmt.DateTime(p.now().UTC()),
	}
	if err := p.History.Record(ctx, entry); err != nil {
		// the reply is out, a history failure must not fail the run.
		p.log.Error().Err(err).Str("thread", entry.ThreadID).Msg("could not record reply")
	}
	return &Result{RunID: p.RunID, Candidates: len(candidates), Delivery: delivery}, nil
}

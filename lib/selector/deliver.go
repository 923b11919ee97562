package selector

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sprakpolisen/dedem/lib"
)

var ErrCandidatesExhausted = errors.New("every reply candidate was rejected")

type Status int

const (
	Posted Status = iota
	Blocked
	Failed
)

func (s Status) String() string {
	switch s {
	case Posted:
		return "posted"
	case Blocked:
		return "blocked"
	default:
		return "failed"
	}
}

// PostResult is what the posting collaborator reports back for one reply.
type PostResult struct {
	Status  Status
	ReplyID string
	Err     error
}

type Poster interface {
	Post(ctx context.Context, candidate lib.ReplyCandidate, body string) PostResult
}

// Composer builds the reply body for a selected candidate.
type Composer func(ctx context.Context, candidate lib.ReplyCandidate) (string, error)

// Delivery is a reply that was accepted.
type Delivery struct {
	Candidate lib.ReplyCandidate
	Body      string
	ReplyID   string
}

// Deliver selects a candidate, composes and posts the reply. Candidates whose author has
// blocked us are removed from the pool and selection starts over, until a reply is
// posted or the pool runs dry.
func Deliver(ctx context.Context, candidates []lib.ReplyCandidate, minHour, maxHour float64, compose Composer, poster Poster) (*Delivery, error) {
	pool := make([]lib.ReplyCandidate, len(candidates))
	copy(pool, candidates)

	attempts := 0
	for {
		candidate, err := Select(pool, minHour, maxHour)
		if err != nil {
			if attempts > 0 {
				return nil, fmt.Errorf("%w after %d attempts: %v", ErrCandidatesExhausted, attempts, err)
			}
			return nil, err
		}

		body, err := compose(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("compose reply to %s: %w", candidate.ID, err)
		}

		attempts++
		candidate.ReplyAttempted = true
		log.Info().Str("comment", candidate.ID).Str("thread", candidate.ThreadID).Msg("replying to comment")
		res := poster.Post(ctx, candidate, body)
		switch res.Status {
		case Posted:
			return &Delivery{Candidate: candidate, Body: body, ReplyID: res.ReplyID}, nil
		case Blocked:
			log.Error().Err(res.Err).Str("comment", candidate.ID).Msg("reply blocked by author")
			pool = remove(pool, candidate.ID)
		default:
			err := res.Err
			if err == nil {
				err = errors.New("posting failed")
			}
			return nil, fmt.Errorf("reply to %s: %w", candidate.ID, err)
		}
	}
}

func remove(pool []lib.ReplyCandidate, id string) []lib.ReplyCandidate {
	res := pool[:0]
	for _, c := range pool {
		if c.ID != id {
			res = append(res, c)
		}
	}
	return res
}

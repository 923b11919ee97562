package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

var ErrFetchExhausted = errors.New("fetch attempts exhausted")

// Backoff retries a fetch a fixed number of times, doubling the delay after each
// failure.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	// Timer waits between attempts. The library's real timer is used when nil.
	Timer backoff.Timer
}

func DefaultBackoff() Backoff {
	return Backoff{Attempts: 5, Delay: 400 * time.Millisecond}
}

func (b Backoff) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = b.Delay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = time.Hour
	exp.MaxElapsedTime = 0

	attempts := b.Attempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Submission fetches one submission, retrying on failure.
func (b Backoff) Submission(ctx context.Context, src Source, id string) (*Submission, error) {
	var submission *Submission
	attempt := 0
	fetch := func() error {
		attempt++
		var err error
		submission, err = src.Submission(ctx, id)
		return err
	}
	notify := func(err error, delay time.Duration) {
		log.Debug().Err(err).Str("submission", id).Int("attempt", attempt).Dur("delay", delay).Msg("fetch failed")
	}
	err := backoff.RetryNotifyWithTimer(fetch, b.policy(ctx), notify, b.Timer)
	if err == nil {
		return submission, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return nil, fmt.Errorf("%w for submission %s: %v", ErrFetchExhausted, id, err)
}

// FetchSubmissions fetches every thread in ids. Threads that can't be fetched are
// dropped from the run.
func FetchSubmissions(ctx context.Context, src Source, ids []string, b Backoff) (map[string]Submission, error) {
	res := make(map[string]Submission, len(ids))
	for _, id := range ids {
		key := ThreadKey(id)
		if _, ok := res[key]; ok {
			continue
		}
		submission, err := b.Submission(ctx, src, key)
		if errors.Is(err, ErrFetchExhausted) {
			log.Warn().Err(err).Str("submission", key).Msg("dropping submission")
			continue
		} else if err != nil {
			return nil, err
		}
		res[key] = *submission
	}
	return res, nil
}

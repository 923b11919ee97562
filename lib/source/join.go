package source

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Item is a comment joined with its thread.
type Item struct {
	Comment    Comment
	Submission Submission
	AgeHours   float64
}

// Collect reads every comment from src, drops those written by botName, and joins the
// rest with their threads. Comments whose thread could not be fetched are left out.
func Collect(ctx context.Context, src Source, botName string, backoff Backoff, now time.Time) ([]Item, error) {
	comments, err := src.Comments(ctx)
	if err != nil {
		return nil, err
	}

	var own int
	kept := make([]Comment, 0, len(comments))
	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		if c.Author != nil && strings.EqualFold(*c.Author, botName) {
			own++
			continue
		}
		kept = append(kept, c)
		ids = append(ids, c.ThreadID)
	}
	if own > 0 {
		log.Debug().Int("count", own).Str("bot", botName).Msg("skipped own comments")
	}

	submissions, err := FetchSubmissions(ctx, src, ids, backoff)
	if err != nil {
		return nil, err
	}
	return Join(kept, submissions, now), nil
}

// Join pairs comments with their submissions. Comments without a submission are
// dropped.
func Join(comments []Comment, submissions map[string]Submission, now time.Time) []Item {
	items := make([]Item, 0, len(comments))
	for _, c := range comments {
		s, ok := submissions[ThreadKey(c.ThreadID)]
		if !ok {
			continue
		}
		items = append(items, Item{
			Comment:    c,
			Submission: s,
			AgeHours:   s.AgeHours(now),
		})
	}
	return items
}

package recogniser

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/cache"
	"github.com/sprakpolisen/dedem/lib/text"
)

// NonTarget is the label the classifier gives to every word it has no opinion on.
const NonTarget = "ord"

// Client classifies the tokens of one sentence. Offsets in the returned predictions are
// byte offsets into sentence.
type Client interface {
	Classify(ctx context.Context, sentence string) ([]lib.Prediction, error)
}

type Predictor struct {
	client Client
}

func NewPredictor(client Client) Predictor {
	return Predictor{client: client}
}

// Predict returns the spans of sentence where the classifier disagrees with what was
// written, sorted by offset.
func (p Predictor) Predict(ctx context.Context, sentence string) ([]lib.Prediction, error) {
	// the model was trained on lower-cased confusables, the view keeps byte offsets.
	view := text.LowerConfusables(sentence)
	predictions, err := p.client.Classify(ctx, view)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	var res []lib.Prediction
	for _, prediction := range predictions {
		if strings.EqualFold(prediction.Entity, NonTarget) {
			continue
		}
		if prediction.Start < 0 || prediction.End > len(sentence) || prediction.Start >= prediction.End {
			log.Warn().Int("start", prediction.Start).Int("end", prediction.End).Str("sentence", sentence).Msg("prediction outside sentence")
			continue
		}
		prediction.Word = sentence[prediction.Start:prediction.End]
		if strings.ToLower(prediction.Entity) == strings.ToLower(prediction.Word) {
			continue
		}
		if !text.IsStandalone(sentence, prediction.Start, prediction.End) {
			continue
		}
		res = append(res, prediction)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Start < res[j].Start
	})
	return res, nil
}

// NewCachedClient stores the predictions of client in c, keyed by modelID and sentence.
// Cache failures are logged and fall through to the classifier.
func NewCachedClient(modelID string, client Client, c cache.Client) Client {
	return &cached{
		modelID: modelID,
		client:  client,
		cache:   c,
	}
}

type cached struct {
	modelID string
	client  Client
	cache   cache.Client
}

func (c *cached) Classify(ctx context.Context, sentence string) ([]lib.Prediction, error) {
	key := cache.Key(c.modelID, sentence)
	lookup, err := c.cache.Get(key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("prediction cache read failed")
	} else if lookup != nil {
		return lookup.Predictions, nil
	}

	predictions, err := c.client.Classify(ctx, sentence)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(key, &cache.Lookup{ModelID: c.modelID, Predictions: predictions}); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("prediction cache write failed")
	}
	return predictions, nil
}

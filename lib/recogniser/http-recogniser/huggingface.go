package http_recogniser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/recogniser"
	"github.com/sprakpolisen/dedem/lib/text"
)

// NewClient returns a classifier backed by a token-classification endpoint that speaks
// the huggingface inference protocol.
func NewClient(url string) recogniser.Client {
	return &huggingface{
		Url:        url,
		httpClient: http.DefaultClient,
	}
}

type huggingface struct {
	Url        string
	httpClient lib.HttpClient
}

type Request struct {
	Inputs     string            `json:"inputs"`
	Parameters RequestParameters `json:"parameters"`
}

type RequestParameters struct {
	AggregationStrategy string `json:"aggregation_strategy"`
}

type Response []Entity

// Entity is one token classification. Start and End count characters, not bytes.
type Entity struct {
	EntityGroup string  `json:"entity_group"`
	Entity      string  `json:"entity"`
	Score       float64 `json:"score"`
	Word        string  `json:"word"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}

func (h *huggingface) Classify(ctx context.Context, sentence string) ([]lib.Prediction, error) {
	b, err := json.Marshal(Request{
		Inputs:     sentence,
		Parameters: RequestParameters{AggregationStrategy: "first"},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier responded with %d: %s", resp.StatusCode, string(body))
	}

	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}

	predictions := make([]lib.Prediction, 0, len(response))
	for _, entity := range response {
		label := entity.EntityGroup
		if label == "" {
			label = entity.Entity
		}
		if entity.Start < 0 || entity.Start > entity.End {
			log.Warn().Int("start", entity.Start).Int("end", entity.End).Str("word", entity.Word).Msg("skipping entity with invalid offsets")
			continue
		}
		start := text.ByteOffset(sentence, entity.Start)
		end := text.ByteOffset(sentence, entity.End)
		predictions = append(predictions, lib.Prediction{
			Start:  start,
			End:    end,
			Word:   sentence[start:end],
			Entity: label,
			Score:  entity.Score,
		})
	}
	return predictions, nil
}

package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/filter"
	"github.com/sprakpolisen/dedem/lib/pipeline"
	"github.com/sprakpolisen/dedem/lib/selector"
	"github.com/sprakpolisen/dedem/lib/source"
)

const (
	posterOutbox = "outbox"
	posterHttp   = "http"
)

// config structure
type sprakpolisenConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	BotName        string  `mapstructure:"bot_name"`
	Snapshot       string  `mapstructure:"snapshot"`
	MinHour        float64 `mapstructure:"min_hour"`
	MaxHour        float64 `mapstructure:"max_hour"`
	Fetch          struct {
		Attempts int
		Delay    time.Duration
	}
	Poster struct {
		Type    string
		Url     string
		Outbox  string
		Blocked []string
	}
	Result   string
	Pipeline pipeline.Config
}

var config sprakpolisenConfig

func initConfig() {
	// initialise config with defaults.
	err := lib.InitializeConfig("./config/sprakpolisen.yml", map[string]interface{}{
		"log_level": "info",
		"bot_name":  "SprakpolisenBot",
		"snapshot":  "./data/snapshot.json",
		"min_hour":  0.7,
		"max_hour":  19,
		"fetch": map[string]interface{}{
			"attempts": 5,
			"delay":    "400ms",
		},
		"poster": map[string]interface{}{
			"type":   posterOutbox,
			"outbox": "./data/outbox",
		},
		"result":   "",
		"pipeline": pipeline.DefaultConfig(filter.AnalysisThreshold),
	}, &config)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

func newPoster(runID string) selector.Poster {
	switch config.Poster.Type {
	case posterHttp:
		return source.NewHttpPoster(config.Poster.Url, runID)
	case posterOutbox:
		return source.NewOutboxPoster(config.Poster.Outbox, runID, config.Poster.Blocked)
	default:
		log.Fatal().Str("poster", config.Poster.Type).Msg("invalid poster type")
	}
	return nil
}

func main() {
	initConfig()
	ctx, cancel := lib.InterruptContext(context.Background())
	defer cancel()

	p, err := pipeline.Build(config.Pipeline)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	log.Info().Str("run", p.RunID).Str("snapshot", config.Snapshot).Msg("starting run")

	src, err := source.NewFileSource(config.Snapshot)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	backoff := source.Backoff{Attempts: config.Fetch.Attempts, Delay: config.Fetch.Delay}
	items, err := source.Collect(ctx, src, config.BotName, backoff, time.Now())
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	result, err := p.Run(ctx, items, pipeline.Bounds{MinHour: config.MinHour, MaxHour: config.MaxHour}, newPoster(p.RunID))
	if err != nil {
		log.Fatal().Err(err).Str("run", p.RunID).Msg("no reply posted")
	}

	if config.Result == "" {
		return
	}
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	if err := os.WriteFile(config.Result, b, 0o644); err != nil {
		log.Fatal().Err(err).Send()
	}
}

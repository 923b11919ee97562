package pipeline

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sprakpolisen/dedem/lib/align"
	"github.com/sprakpolisen/dedem/lib/blocklist"
	"github.com/sprakpolisen/dedem/lib/cache"
	"github.com/sprakpolisen/dedem/lib/cache/local"
	"github.com/sprakpolisen/dedem/lib/cache/remote"
	"github.com/sprakpolisen/dedem/lib/extract"
	"github.com/sprakpolisen/dedem/lib/filter"
	"github.com/sprakpolisen/dedem/lib/history"
	"github.com/sprakpolisen/dedem/lib/recogniser"
	http_recogniser "github.com/sprakpolisen/dedem/lib/recogniser/http-recogniser"
	onnx_recogniser "github.com/sprakpolisen/dedem/lib/recogniser/onnx-recogniser"
	"github.com/sprakpolisen/dedem/lib/reply"
)

const (
	ClassifierHttp = "http"
	ClassifierOnnx = "onnx"
)

type ClassifierConfig struct {
	Type    string
	ModelID string `mapstructure:"model_id"`
	Http    struct {
		Url string
	}
	Onnx onnx_recogniser.Config
}

type CacheConfig struct {
	Type  cache.Type
	Redis remote.RedisConfig
}

type AlignerConfig struct {
	Enabled        bool
	TranslatorUrl  string `mapstructure:"translator_url"`
	TokenizerPath  string `mapstructure:"tokenizer_path"`
	LexiconPath    string `mapstructure:"lexicon_path"`
	AttentionLayer int    `mapstructure:"attention_layer"`
}

type HistoryConfig struct {
	Type          history.Type
	Redis         history.RedisConfig
	Elasticsearch history.ElasticsearchConfig
}

// Config is the part of a binary's config that describes the pipeline.
type Config struct {
	Threshold     float64
	MetaPhrases   []string `mapstructure:"meta_phrases"`
	BlocklistPath string   `mapstructure:"blocklist_path"`
	TemplatesPath string   `mapstructure:"templates_path"`
	Classifier    ClassifierConfig
	Cache         CacheConfig
	Aligner       AlignerConfig
	History       HistoryConfig
}

// DefaultConfig is the defaults map for the keys of Config, to be nested under the
// binary's pipeline key.
func DefaultConfig(threshold float64) map[string]interface{} {
	return map[string]interface{}{
		"threshold":      threshold,
		"blocklist_path": "",
		"templates_path": "",
		"classifier": map[string]interface{}{
			"type":     ClassifierHttp,
			"model_id": "Lauler/deformer",
			"http": map[string]interface{}{
				"url": "http://localhost:8501/classify",
			},
			"onnx": map[string]interface{}{
				"output_name": "logits",
				"offset_unit": onnx_recogniser.OffsetRunes,
				"labels":      []string{"ord", "DE", "DEM"},
			},
		},
		"cache": map[string]interface{}{
			"type": string(cache.None),
			"redis": map[string]interface{}{
				"host":       "localhost",
				"port":       6379,
				"key_prefix": "predictions:",
			},
		},
		"aligner": map[string]interface{}{
			"enabled":         false,
			"translator_url":  "http://localhost:8502/translate",
			"attention_layer": 0,
		},
		"history": map[string]interface{}{
			"type": string(history.Memory),
			"redis": map[string]interface{}{
				"host":       "localhost",
				"port":       6379,
				"key_prefix": "replied:",
			},
			"elasticsearch": map[string]interface{}{
				"host":  "localhost",
				"port":  9200,
				"index": "replies",
			},
		},
	}
}

// Build wires a pipeline from its config.
func Build(conf Config) (*Pipeline, error) {
	bl, err := blocklist.LoadOrDefault(conf.BlocklistPath)
	if err != nil {
		return nil, err
	}
	templates, err := reply.LoadTemplates(conf.TemplatesPath)
	if err != nil {
		return nil, err
	}
	client, err := NewClassifier(conf.Classifier, conf.Cache)
	if err != nil {
		return nil, err
	}
	aligner, err := NewAligner(conf.Aligner)
	if err != nil {
		return nil, err
	}
	hist, err := NewHistory(conf.History)
	if err != nil {
		return nil, err
	}

	threshold := conf.Threshold
	if threshold == 0 {
		threshold = filter.AnalysisThreshold
	}
	return New(Components{
		Extractor: extract.New(conf.MetaPhrases),
		Predictor: recogniser.NewPredictor(client),
		Filter:    filter.New(threshold, bl),
		Aligner:   aligner,
		Composer:  reply.NewComposer(templates),
		History:   hist,
	}), nil
}

// NewClassifier returns the configured classifier, behind a cache unless caching is off.
func NewClassifier(conf ClassifierConfig, cacheConf CacheConfig) (recogniser.Client, error) {
	var client recogniser.Client
	switch conf.Type {
	case ClassifierHttp:
		client = http_recogniser.NewClient(conf.Http.Url)
	case ClassifierOnnx:
		var err error
		if client, err = onnx_recogniser.New(conf.Onnx); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid classifier type %q", conf.Type)
	}

	var store cache.Client
	switch cacheConf.Type {
	case cache.None, "":
		return client, nil
	case cache.Local:
		store = local.New()
	case cache.Redis:
		redisClient := remote.NewRedisClient(cacheConf.Redis)
		if !redisClient.Ready() {
			log.Warn().Str("host", cacheConf.Redis.Host).Msg("redis cache is not reachable yet")
		}
		store = redisClient
	default:
		return nil, fmt.Errorf("invalid cache type %q", cacheConf.Type)
	}
	return recogniser.NewCachedClient(conf.ModelID, client, store), nil
}

// NewAligner returns nil when the aligner is disabled.
func NewAligner(conf AlignerConfig) (*align.Aligner, error) {
	if !conf.Enabled {
		return nil, nil
	}
	lexicon, err := align.LoadLexicon(conf.LexiconPath)
	if err != nil {
		return nil, err
	}
	var tokenizer align.Tokenizer
	if conf.TokenizerPath != "" {
		if tokenizer, err = align.NewPretrainedTokenizer(conf.TokenizerPath); err != nil {
			return nil, err
		}
	}
	return align.New(align.NewHttpTranslator(conf.TranslatorUrl), tokenizer, lexicon, conf.AttentionLayer), nil
}

func NewHistory(conf HistoryConfig) (history.Client, error) {
	switch conf.Type {
	case history.None:
		return history.NewNoopClient(), nil
	case history.Memory, "":
		return history.NewMemoryClient(), nil
	case history.Redis:
		client := history.NewRedisClient(conf.Redis)
		if !client.Ready() {
			return nil, fmt.Errorf("redis history at %s:%d is not reachable", conf.Redis.Host, conf.Redis.Port)
		}
		return client, nil
	case history.Elasticsearch:
		client, err := history.NewElasticsearchClient(conf.Elasticsearch)
		if err != nil {
			return nil, err
		}
		if !client.Ready() {
			return nil, fmt.Errorf("elasticsearch history at %s:%d is not reachable", conf.Elasticsearch.Host, conf.Elasticsearch.Port)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("invalid history type %q", conf.Type)
	}
}

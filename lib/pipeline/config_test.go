package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprakpolisen/dedem/lib/cache"
	"github.com/sprakpolisen/dedem/lib/history"
)

func TestBuild(t *testing.T) {
	conf := Config{
		Classifier: ClassifierConfig{Type: ClassifierHttp, ModelID: "model"},
		Cache:      CacheConfig{Type: cache.Local},
		History:    HistoryConfig{Type: history.Memory},
	}
	conf.Classifier.Http.Url = "http://localhost:8501/classify"

	p, err := Build(conf)
	require.NoError(t, err)
	assert.NotEmpty(t, p.RunID)
	assert.Nil(t, p.Aligner)
	assert.NotNil(t, p.Composer)
}

func TestBuildWithAligner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yml")
	require.NoError(t, os.WriteFile(path, []byte("classes:\n  de: [they]\n  dem: [them]\n"), 0o644))
	conf := Config{
		Classifier: ClassifierConfig{Type: ClassifierHttp},
		Aligner:    AlignerConfig{Enabled: true, TranslatorUrl: "http://localhost:8502/translate", LexiconPath: path},
	}

	p, err := Build(conf)
	require.NoError(t, err)
	assert.NotNil(t, p.Aligner)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		conf Config
	}{
		{"unknown classifier", Config{Classifier: ClassifierConfig{Type: "gpt"}}},
		{"unknown cache", Config{Classifier: ClassifierConfig{Type: ClassifierHttp}, Cache: CacheConfig{Type: "memcached"}}},
		{"unknown history", Config{Classifier: ClassifierConfig{Type: ClassifierHttp}, History: HistoryConfig{Type: "postgres"}}},
		{"missing blocklist", Config{BlocklistPath: "/does/not/exist.yml", Classifier: ClassifierConfig{Type: ClassifierHttp}}},
		{"missing templates", Config{TemplatesPath: "/does/not/exist.yml", Classifier: ClassifierConfig{Type: ClassifierHttp}}},
		{"onnx without labels", Config{Classifier: ClassifierConfig{Type: ClassifierOnnx}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.conf)
			assert.Error(t, err)
		})
	}
}

func TestNewHistoryDefaults(t *testing.T) {
	client, err := NewHistory(HistoryConfig{})
	require.NoError(t, err)
	assert.IsType(t, history.NewMemoryClient(), client)

	client, err = NewHistory(HistoryConfig{Type: history.None})
	require.NoError(t, err)
	assert.IsType(t, history.NewNoopClient(), client)
}

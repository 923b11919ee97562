package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v7"
)

type ElasticsearchConfig struct {
	Host  string
	Port  int
	Index string
}

func NewElasticsearchClient(conf ElasticsearchConfig) (*EsClient, error) {
	return newElasticsearchClient(conf, nil)
}

func newElasticsearchClient(conf ElasticsearchConfig, transport http.RoundTripper) (*EsClient, error) {
	c, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{fmt.Sprintf("http://%s:%d", conf.Host, conf.Port)},
		Transport: transport,
	})
	if err != nil {
		return nil, err
	}
	index := conf.Index
	if index == "" {
		index = "replies"
	}
	return &EsClient{
		Client: c,
		index:  index,
	}, nil
}

// EsClient stores one document per thread, keyed by the thread id.
type EsClient struct {
	*elasticsearch.Client
	index string
}

func (e *EsClient) Ready() bool {
	res, err := e.Info()
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return res.StatusCode == 200
}

func (e *EsClient) Seen(ctx context.Context, threadID string) (bool, error) {
	res, err := e.Exists(e.index, threadID, e.Exists.WithContext(ctx))
	if err != nil {
		return false, err
	}
	defer res.Body.Close()
	switch res.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	default:
		return false, errors.New(res.String())
	}
}

func (e *EsClient) Record(ctx context.Context, entry Entry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	res, err := e.Index(e.index, bytes.NewReader(b),
		e.Index.WithContext(ctx),
		e.Index.WithDocumentID(entry.ThreadID),
		e.Index.WithRefresh("true"),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.New(res.String())
	}
	return nil
}

package testhelpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/sprakpolisen/dedem/lib"
)

// HttpClient is a mock of lib.HttpClient.
type HttpClient struct {
	mock.Mock
}

func (_m *HttpClient) Do(_a0 *http.Request) (*http.Response, error) {
	ret := _m.Called(_a0)

	var r0 *http.Response
	if rf, ok := ret.Get(0).(func(*http.Request) *http.Response); ok {
		r0 = rf(_a0)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*http.Response)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(*http.Request) error); ok {
		r1 = rf(_a0)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Classifier is a mock of recogniser.Client.
type Classifier struct {
	mock.Mock
}

func (_m *Classifier) Classify(ctx context.Context, sentence string) ([]lib.Prediction, error) {
	ret := _m.Called(ctx, sentence)

	var r0 []lib.Prediction
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]lib.Prediction)
	}
	return r0, ret.Error(1)
}

// StaticClassifier answers from a fixed table of sentences. Unknown sentences get no
// predictions.
type StaticClassifier map[string][]lib.Prediction

func (s StaticClassifier) Classify(_ context.Context, sentence string) ([]lib.Prediction, error) {
	return s[sentence], nil
}

// JSONResponse builds an http response with v marshalled as its body.
func JSONResponse(status int, v interface{}) *http.Response {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

// Prediction is shorthand for a prediction over sentence[start:end].
func Prediction(sentence string, start, end int, entity string, score float64) lib.Prediction {
	return lib.Prediction{
		Start:  start,
		End:    end,
		Word:   sentence[start:end],
		Entity: entity,
		Score:  score,
	}
}

// RandomLowercaseString returns n random letters, for keys that must not collide with
// other test runs.
func RandomLowercaseString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + rand.Intn(26))
	}
	return string(b)
}

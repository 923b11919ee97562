package lib

import "net/http"

// HttpClient is the part of *http.Client the model clients use, so tests can mock it.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

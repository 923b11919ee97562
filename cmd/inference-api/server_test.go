package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/blocklist"
	"github.com/sprakpolisen/dedem/lib/extract"
	"github.com/sprakpolisen/dedem/lib/filter"
	"github.com/sprakpolisen/dedem/lib/pipeline"
	"github.com/sprakpolisen/dedem/lib/recogniser"
	"github.com/sprakpolisen/dedem/lib/testhelpers"
)

func TestServer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Server Suite")
}

type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, string) ([]lib.Prediction, error) {
	return nil, errors.New("model unavailable")
}

func newRouter(client recogniser.Client, maxBodyBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	p := pipeline.New(pipeline.Components{
		Extractor: extract.New(nil),
		Predictor: recogniser.NewPredictor(client),
		Filter:    filter.New(filter.DemoThreshold, blocklist.Default()),
	})
	_, router := gin.CreateTestContext(httptest.NewRecorder())
	server{controller: controller{pipeline: p}, maxBodyBytes: maxBodyBytes}.RegisterRoutes(router)
	return router
}

func post(router *gin.Engine, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/corrections", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

var _ = Describe("Corrections", func() {

	classifier := testhelpers.StaticClassifier{
		"Jag gav dem en bok.": {testhelpers.Prediction("Jag gav dem en bok.", 8, 11, "DE", 0.9812)},
		"Dom sa att de kom.":  {testhelpers.Prediction("Dom sa att de kom.", 0, 3, "DE", 0.999)},
	}

	var _ = Describe("Status codes", func() {

		var router *gin.Engine

		var _ = BeforeEach(func() {
			router = newRouter(classifier, 1024)
		})

		var _ = It("Should be healthy", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			res := httptest.NewRecorder()
			router.ServeHTTP(res, req)

			Ω(res.Code).Should(Equal(http.StatusOK))
			Ω(res.Body.String()).Should(ContainSubstring(`"ok"`))
		})

		var _ = It("Should be a bad request when the body is missing", func() {
			res := post(router, "text/plain", "")
			Ω(res.Code).Should(Equal(http.StatusBadRequest))
			Ω(res.Body.String()).Should(ContainSubstring("request body missing"))
		})

		var _ = It("Should be a bad request for other content types", func() {
			res := post(router, "application/json", `{"text": "hej"}`)
			Ω(res.Code).Should(Equal(http.StatusBadRequest))
		})

		var _ = It("Should reject bodies that are too large", func() {
			res := post(router, "text/plain", strings.Repeat("Jag gav dem en bok. ", 100))
			Ω(res.Code).Should(Equal(http.StatusRequestEntityTooLarge))
		})

		var _ = It("Should be a bad gateway when the classifier fails", func() {
			res := post(newRouter(failingClassifier{}, 0), "text/plain", "Jag gav dem en bok.")
			Ω(res.Code).Should(Equal(http.StatusBadGateway))
		})
	})

	var _ = Describe("Responses", func() {

		var _ = It("Should correct plain text at the demo threshold", func() {
			res := post(newRouter(classifier, 0), "text/plain; charset=utf-8", "Jag gav dem en bok.")
			Ω(res.Code).Should(Equal(http.StatusOK))

			var corrections Corrections
			Ω(json.Unmarshal(res.Body.Bytes(), &corrections)).Should(Succeed())
			Ω(corrections.Sentences).Should(HaveLen(1))
			Ω(corrections.Predictions[0]).Should(HaveLen(1))
			Ω(corrections.Annotations[0]).Should(HaveLen(1))
			Ω(corrections.MistakeCounts).Should(Equal(lib.MistakeCounts{"dem": 1}))
			Ω(corrections.Correction.Sentences).Should(HaveLen(1))
			Ω(corrections.Correction.Sentences[0].Text).Should(Equal("Jag gav ~~dem~~ **de (98.12%)** en bok."))
			Ω(corrections.Correction.Alignment.Bilingual).Should(BeFalse())
		})

		var _ = It("Should drop quotes from html bodies", func() {
			body := "<p>Jag gav dem en bok.</p><blockquote><p>Dom sa att de kom.</p></blockquote>"
			res := post(newRouter(classifier, 0), "text/html", body)
			Ω(res.Code).Should(Equal(http.StatusOK))

			var corrections Corrections
			Ω(json.Unmarshal(res.Body.Bytes(), &corrections)).Should(Succeed())
			Ω(corrections.Sentences).Should(HaveLen(1))
			Ω(corrections.Sentences[0].Text).Should(Equal("Jag gav dem en bok."))
		})

		var _ = It("Should never correct the colloquial spelling", func() {
			res := post(newRouter(classifier, 0), "text/plain", "Dom sa att de kom.")
			Ω(res.Code).Should(Equal(http.StatusOK))

			var corrections Corrections
			Ω(json.Unmarshal(res.Body.Bytes(), &corrections)).Should(Succeed())
			Ω(corrections.Predictions[0]).Should(HaveLen(1))
			Ω(corrections.Annotations[0]).Should(BeEmpty())
			Ω(corrections.Correction.Sentences).Should(BeEmpty())
		})
	})
})

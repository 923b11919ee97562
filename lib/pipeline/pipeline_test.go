package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/align"
	"github.com/sprakpolisen/dedem/lib/blocklist"
	"github.com/sprakpolisen/dedem/lib/extract"
	"github.com/sprakpolisen/dedem/lib/filter"
	"github.com/sprakpolisen/dedem/lib/history"
	"github.com/sprakpolisen/dedem/lib/recogniser"
	"github.com/sprakpolisen/dedem/lib/reply"
	"github.com/sprakpolisen/dedem/lib/selector"
	"github.com/sprakpolisen/dedem/lib/source"
	"github.com/sprakpolisen/dedem/lib/splice"
	"github.com/sprakpolisen/dedem/lib/testhelpers"
	"github.com/sprakpolisen/dedem/lib/text"
)

// swapClassifier flags every de and dem as the other word.
type swapClassifier struct{}

func (swapClassifier) Classify(_ context.Context, sentence string) ([]lib.Prediction, error) {
	var res []lib.Prediction
	for _, w := range text.Words(sentence) {
		switch strings.ToLower(w.Text) {
		case "de":
			res = append(res, testhelpers.Prediction(sentence, w.Start, w.End, "DEM", 0.999))
		case "dem":
			res = append(res, testhelpers.Prediction(sentence, w.Start, w.End, "DE", 0.999))
		}
	}
	return res, nil
}

type fakeTranslator map[string]*align.Translation

func (f fakeTranslator) Translate(_ context.Context, sentence string) (*align.Translation, error) {
	translation, ok := f[sentence]
	if !ok {
		return nil, errors.New("no translation")
	}
	return translation, nil
}

type mockPoster struct {
	mock.Mock
}

func (m *mockPoster) Post(ctx context.Context, candidate lib.ReplyCandidate, body string) selector.PostResult {
	return m.Called(candidate.ID, body).Get(0).(selector.PostResult)
}

func item(id, thread, body string, age float64) source.Item {
	author := "user"
	return source.Item{
		Comment:    source.Comment{ID: id, ThreadID: "t3_" + thread, Author: &author, Body: body},
		Submission: source.Submission{ID: thread, Title: "Tråd"},
		AgeHours:   age,
	}
}

func newPipeline(client recogniser.Client, hist history.Client, aligner *align.Aligner) *Pipeline {
	return New(Components{
		Extractor: extract.New(nil),
		Predictor: recogniser.NewPredictor(client),
		Filter:    filter.New(filter.AnalysisThreshold, blocklist.Default()),
		Aligner:   aligner,
		Composer:  reply.NewComposer(reply.DefaultTemplates()),
		History:   hist,
	})
}

type pipelineSuite struct {
	suite.Suite
	ctx        context.Context
	classifier testhelpers.StaticClassifier
	translator fakeTranslator
	history    history.Client
	items      []source.Item
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(pipelineSuite))
}

func (s *pipelineSuite) SetupTest() {
	s.ctx = context.Background()
	p := testhelpers.Prediction
	s.classifier = testhelpers.StaticClassifier{
		"dem gick hem.":          {p("dem gick hem.", 0, 3, "DE", 0.999), p("dem gick hem.", 4, 8, "ord", 0.99)},
		"Jag gav de en bok.":     {p("Jag gav de en bok.", 8, 10, "DEM", 0.999)},
		"Jag vet att de är här.": {p("Jag vet att de är här.", 12, 14, "DET", 0.999)},
		"Vi såg de igår.":        {p("Vi såg de igår.", 8, 10, "DEM", 0.999)},
		"de som kom var glada.":  {p("de som kom var glada.", 0, 2, "DEM", 0.999)},
		"Ge dem boken nu.":       {p("Ge dem boken nu.", 3, 6, "DE", 0.5)},
	}
	s.translator = fakeTranslator{
		"De gick hem.": {
			SourceTokens: []string{"▁De", "▁gick", "▁hem", ".", "</s>"},
			TargetTokens: []string{"<pad>", "▁They", "▁went", "▁home", ".", "</s>"},
			CrossAttention: [][][][]float64{{{
				{0.0, 0.9, 0.02, 0.02, 0.02, 0.04},
				{0.0, 0.1, 0.8, 0.05, 0.05, 0.0},
				{0.0, 0.1, 0.05, 0.8, 0.05, 0.0},
				{0.0, 0.1, 0.05, 0.05, 0.8, 0.0},
				{0.2, 0.2, 0.2, 0.2, 0.1, 0.1},
			}}},
		},
	}
	s.history = history.NewMemoryClient()
	s.Require().NoError(s.history.Record(s.ctx, history.Entry{ThreadID: "t4"}))

	withHTML := item("c2", "t2", "Jag gav de en bok.\n\n> Dem gick hem.", 5)
	withHTML.Comment.BodyHTML = "<div class=\"md\"><p>Jag gav de en bok.</p><blockquote><p>Dem gick hem.</p></blockquote></div>"
	s.items = []source.Item{
		item("c1", "t1", "Dem gick hem.", 3),
		withHTML,
		item("c3", "t3", "Jag vet att de är här.", 4),
		item("c4", "t4", "Vi såg de igår.", 2),
		item("c5", "t5", "De som kom var glada.", 2),
		item("c6", "t6", "Ge dem boken nu.", 2),
	}
}

func (s *pipelineSuite) pipeline() *Pipeline {
	return newPipeline(s.classifier, s.history, align.New(s.translator, nil, align.DefaultLexicon(), 0))
}

func (s *pipelineSuite) TestCandidates() {
	candidates, err := s.pipeline().Candidates(s.ctx, s.items)
	s.Require().NoError(err)
	s.Require().Len(candidates, 2)

	c1 := candidates[0]
	s.Equal("c1", c1.ID)
	s.Equal("t1", c1.ThreadID)
	s.Equal("user", c1.Author)
	s.Equal(3.0, c1.ThreadAgeHours)
	s.Equal(lib.MistakeCounts{"dem": 1}, c1.MistakeCounts)
	s.Require().Len(c1.Sentences, 1)
	s.Equal("Dem gick hem.", c1.Sentences[0].Text)
	s.Equal([]lib.MistakeAnnotation{{Start: 0, End: 3, SurfaceWord: "Dem", CorrectedWord: "de", Label: "DE", Score: 0.999}}, c1.Annotations[0])

	c2 := candidates[1]
	s.Equal("c2", c2.ID)
	s.Equal(lib.MistakeCounts{"de": 1}, c2.MistakeCounts)
	s.Require().Len(c2.Sentences, 1)
	s.Equal("Jag gav de en bok.", c2.Sentences[0].Text)
}

func (s *pipelineSuite) TestCandidateWithoutMistakes() {
	candidate, err := s.pipeline().Candidate(s.ctx, item("c9", "t9", "Inget att se här.", 2))
	s.Require().NoError(err)
	s.Nil(candidate)
}

func (s *pipelineSuite) TestClassifierFailure() {
	classifier := &testhelpers.Classifier{}
	classifier.On("Classify", s.ctx, "dem gick hem.").Return(nil, errors.New("model unavailable"))
	p := newPipeline(classifier, s.history, nil)

	_, err := p.Candidates(s.ctx, s.items[:1])
	s.Error(err)
}

func (s *pipelineSuite) TestCompose() {
	p := s.pipeline()
	candidates, err := p.Candidates(s.ctx, s.items)
	s.Require().NoError(err)

	body, err := p.Compose(s.ctx, candidates[0])
	s.Require().NoError(err)
	s.Contains(body, "> ~~Dem~~ **De (99.90%)** gick hem. \n\n")
	s.Contains(body, "## Översättning")
	s.Contains(body, "> ~~Them~~ **They** went home. \n\n")

	body, err = p.Compose(s.ctx, candidates[1])
	s.Require().NoError(err)
	s.Contains(body, "> Jag gav ~~de~~ **dem (99.90%)** en bok. \n\n")
	s.NotContains(body, "## Översättning")
}

func (s *pipelineSuite) TestComposeWithoutAligner() {
	p := newPipeline(s.classifier, s.history, nil)
	candidates, err := p.Candidates(s.ctx, s.items)
	s.Require().NoError(err)

	body, err := p.Compose(s.ctx, candidates[0])
	s.Require().NoError(err)
	s.NotContains(body, "## Översättning")
}

func (s *pipelineSuite) TestComposeRejectsOverlap() {
	candidate := lib.ReplyCandidate{
		ID:        "x",
		Sentences: []lib.SentenceCandidate{{Text: "dem de"}},
		Annotations: [][]lib.MistakeAnnotation{{
			{Start: 0, End: 3, SurfaceWord: "dem", CorrectedWord: "de"},
			{Start: 2, End: 5, SurfaceWord: "m d", CorrectedWord: "de"},
		}},
	}
	_, err := s.pipeline().Compose(s.ctx, candidate)
	s.Error(err)
}

func (s *pipelineSuite) TestRun() {
	poster := &mockPoster{}
	poster.On("Post", "c1", mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "~~Dem~~ **De (99.90%)**")
	})).Return(selector.PostResult{Status: selector.Posted, ReplyID: "r1"}).Once()

	p := s.pipeline()
	result, err := p.Run(s.ctx, s.items, Bounds{MinHour: 0.7, MaxHour: 19}, poster)
	s.Require().NoError(err)
	s.Equal(p.RunID, result.RunID)
	s.Equal(2, result.Candidates)
	s.Equal("c1", result.Delivery.Candidate.ID)
	s.Equal("r1", result.Delivery.ReplyID)
	poster.AssertExpectations(s.T())

	seen, err := s.history.Seen(s.ctx, "t1")
	s.Require().NoError(err)
	s.True(seen)

	candidates, err := p.Candidates(s.ctx, s.items)
	s.Require().NoError(err)
	s.Require().Len(candidates, 1)
	s.Equal("c2", candidates[0].ID)
}

func (s *pipelineSuite) TestRunBlocked() {
	poster := &mockPoster{}
	poster.On("Post", "c1", mock.Anything).Return(selector.PostResult{Status: selector.Blocked}).Once()
	poster.On("Post", "c2", mock.Anything).Return(selector.PostResult{Status: selector.Posted, ReplyID: "r2"}).Once()

	result, err := s.pipeline().Run(s.ctx, s.items, Bounds{MinHour: 0.7, MaxHour: 19}, poster)
	s.Require().NoError(err)
	s.Equal("c2", result.Delivery.Candidate.ID)
	s.Contains(result.Delivery.Body, "~~de~~ **dem (99.90%)**")
	poster.AssertExpectations(s.T())

	seen, err := s.history.Seen(s.ctx, "t2")
	s.Require().NoError(err)
	s.True(seen)
	seen, err = s.history.Seen(s.ctx, "t1")
	s.Require().NoError(err)
	s.False(seen)
}

func (s *pipelineSuite) TestRunNoCandidates() {
	poster := &mockPoster{}
	_, err := s.pipeline().Run(s.ctx, s.items[2:], Bounds{MinHour: 0.7, MaxHour: 19}, poster)
	s.ErrorIs(err, selector.ErrEmptyCandidateSet)
	poster.AssertNotCalled(s.T(), "Post", mock.Anything, mock.Anything)
}

func TestSplicedTextHasNoNewMistakes(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(swapClassifier{}, nil, nil)

	analysis, err := p.Analyze(ctx, "c1", "Jag gav dem en bok.")
	require.NoError(t, err)
	require.Len(t, analysis.Annotations, 1)
	require.Len(t, analysis.Annotations[0], 1)

	correction, err := p.Correct(ctx, analysis.Sentences, analysis.Annotations, splicedWithConfidence)
	require.NoError(t, err)
	require.Len(t, correction.Sentences, 1)
	spliced := correction.Sentences[0].Text
	assert.Equal(t, "Jag gav ~~dem~~ **de (99.90%)** en bok.", spliced)

	again, err := p.Analyze(ctx, "c1", spliced)
	require.NoError(t, err)
	for _, annotations := range again.Annotations {
		assert.Empty(t, annotations)
	}

	again, err = p.Analyze(ctx, "c1", spliced+" Sen kom dem hem.")
	require.NoError(t, err)
	var found []lib.MistakeAnnotation
	for _, annotations := range again.Annotations {
		found = append(found, annotations...)
	}
	require.Len(t, found, 1)
	assert.Equal(t, "dem", found[0].SurfaceWord)
	assert.Equal(t, "de", found[0].CorrectedWord)
}

var splicedWithConfidence = splice.Options{ShowConfidence: true}

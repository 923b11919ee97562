package selector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sprakpolisen/dedem/lib"
)

type mockPoster struct {
	mock.Mock
}

func (m *mockPoster) Post(ctx context.Context, candidate lib.ReplyCandidate, body string) PostResult {
	return m.Called(ctx, candidate.ID, body).Get(0).(PostResult)
}

type deliverSuite struct {
	suite.Suite
	ctx        context.Context
	candidates []lib.ReplyCandidate
}

func TestDeliverSuite(t *testing.T) {
	suite.Run(t, new(deliverSuite))
}

func (s *deliverSuite) SetupTest() {
	s.ctx = context.Background()
	s.candidates = []lib.ReplyCandidate{
		candidate("a", 2, 1),
		candidate("b", 5, 2),
		candidate("c", 4, 3),
	}
}

func compose(_ context.Context, c lib.ReplyCandidate) (string, error) {
	return "reply to " + c.ID, nil
}

func (s *deliverSuite) TestPosted() {
	poster := &mockPoster{}
	poster.On("Post", s.ctx, "c", "reply to c").Return(PostResult{Status: Posted, ReplyID: "r1"}).Once()

	delivery, err := Deliver(s.ctx, s.candidates, 1, 19, compose, poster)
	s.Require().NoError(err)
	s.Equal("c", delivery.Candidate.ID)
	s.True(delivery.Candidate.ReplyAttempted)
	s.Equal("reply to c", delivery.Body)
	s.Equal("r1", delivery.ReplyID)
	poster.AssertExpectations(s.T())
}

func (s *deliverSuite) TestBlockedSelectsAgain() {
	poster := &mockPoster{}
	poster.On("Post", s.ctx, "c", "reply to c").Return(PostResult{Status: Blocked, Err: errors.New("blocked")}).Once()
	poster.On("Post", s.ctx, "b", "reply to b").Return(PostResult{Status: Posted, ReplyID: "r2"}).Once()

	delivery, err := Deliver(s.ctx, s.candidates, 1, 19, compose, poster)
	s.Require().NoError(err)
	s.Equal("b", delivery.Candidate.ID)
	poster.AssertExpectations(s.T())
	// the caller's slice is left alone.
	s.Len(s.candidates, 3)
	s.Equal("c", s.candidates[2].ID)
}

func (s *deliverSuite) TestAllBlocked() {
	poster := &mockPoster{}
	poster.On("Post", s.ctx, mock.Anything, mock.Anything).Return(PostResult{Status: Blocked})

	_, err := Deliver(s.ctx, s.candidates, 1, 19, compose, poster)
	s.ErrorIs(err, ErrCandidatesExhausted)
	poster.AssertNumberOfCalls(s.T(), "Post", 3)
}

func (s *deliverSuite) TestEmptyPool() {
	poster := &mockPoster{}

	_, err := Deliver(s.ctx, nil, 1, 19, compose, poster)
	s.ErrorIs(err, ErrEmptyCandidateSet)
	poster.AssertNotCalled(s.T(), "Post", mock.Anything, mock.Anything, mock.Anything)
}

func (s *deliverSuite) TestFailureIsFatal() {
	poster := &mockPoster{}
	failure := errors.New("rate limited")
	poster.On("Post", s.ctx, "c", "reply to c").Return(PostResult{Status: Failed, Err: failure}).Once()

	_, err := Deliver(s.ctx, s.candidates, 1, 19, compose, poster)
	s.ErrorIs(err, failure)
	poster.AssertNumberOfCalls(s.T(), "Post", 1)
}

func (s *deliverSuite) TestComposeError() {
	poster := &mockPoster{}
	failing := func(context.Context, lib.ReplyCandidate) (string, error) {
		return "", errors.New("template")
	}

	_, err := Deliver(s.ctx, s.candidates, 1, 19, failing, poster)
	s.Error(err)
	poster.AssertNotCalled(s.T(), "Post", mock.Anything, mock.Anything, mock.Anything)
}

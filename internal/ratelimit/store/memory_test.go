package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nyaya/pkg/platform/clock"
)

const (
	testLimit  = 5
	testWindow = time.Minute
)

type InMemorySuite struct {
	suite.Suite
	clock *clock.Fake
	store *InMemory
	ctx   context.Context
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.clock = clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.store = NewInMemory(s.clock.Clock())
	s.ctx = context.Background()
}

func (s *InMemorySuite) TestAllowUpToLimit() {
	for i := range testLimit {
		res, err := s.store.Allow(s.ctx, "ip:10.0.0.1", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(testLimit-i-1, res.Remaining)
	}

	res, err := s.store.Allow(s.ctx, "ip:10.0.0.1", testLimit, testWindow)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Equal(0, res.Remaining)
	s.Equal(60, res.RetryAfter)
	s.Equal(s.clock.Now().Add(testWindow), res.ResetAt)
}

func (s *InMemorySuite) TestWindowSlides() {
	_, err := s.store.Allow(s.ctx, "k", 2, testWindow)
	s.Require().NoError(err)
	s.clock.Advance(30 * time.Second)
	_, err = s.store.Allow(s.ctx, "k", 2, testWindow)
	s.Require().NoError(err)

	res, err := s.store.Allow(s.ctx, "k", 2, testWindow)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Equal(30, res.RetryAfter, "oldest request leaves the window in 30s")

	s.clock.Advance(30 * time.Second)
	res, err = s.store.Allow(s.ctx, "k", 2, testWindow)
	s.Require().NoError(err)
	s.True(res.Allowed)
	s.Equal(0, res.Remaining)
}

func (s *InMemorySuite) TestAllowNIsAllOrNothing() {
	res, err := s.store.AllowN(s.ctx, "bulk", 4, testLimit, testWindow)
	s.Require().NoError(err)
	s.True(res.Allowed)

	res, err = s.store.AllowN(s.ctx, "bulk", 2, testLimit, testWindow)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Equal(1, res.Remaining, "refused batch must not consume capacity")
}

func (s *InMemorySuite) TestKeysAreIndependentAndResettable() {
	for range testLimit {
		_, err := s.store.Allow(s.ctx, "a", testLimit, testWindow)
		s.Require().NoError(err)
	}
	res, err := s.store.Allow(s.ctx, "b", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(res.Allowed)

	s.Require().NoError(s.store.Reset(s.ctx, "a"))
	res, err = s.store.Allow(s.ctx, "a", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(res.Allowed)
}

func (s *InMemorySuite) TestConcurrentCallersNeverExceedLimit() {
	const callers = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.store.Allow(s.ctx, "shared", testLimit, testWindow)
			s.NoError(err)
			if res != nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(testLimit, allowed)
}

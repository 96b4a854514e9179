//go:build integration

package dispatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"nyaya/internal/notification/dispatch"
	"nyaya/internal/notification/dispatch/mocks"
	"nyaya/internal/notification/models"
	"nyaya/pkg/testutil/containers"
)

type DedupeSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	ctrl  *gomock.Controller
	next  *mocks.MockDispatcher
	d     *dispatch.Deduping
}

func TestDedupeSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(DedupeSuite))
}

func (s *DedupeSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *DedupeSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.ctrl = gomock.NewController(s.T())
	s.next = mocks.NewMockDispatcher(s.ctrl)
	s.d = dispatch.NewDeduping(s.next, s.redis.Client, time.Hour)
}

func (s *DedupeSuite) TestSecondSendSuppressed() {
	ctx := context.Background()
	s.next.EXPECT().Send(gomock.Any(), models.ChannelSMS, "+91", gomock.Any(), "EFIR-1:CRITICAL").Return(nil).Times(1)

	s.Require().NoError(s.d.Send(ctx, models.ChannelSMS, "+91", nil, "EFIR-1:CRITICAL"))
	s.Require().NoError(s.d.Send(ctx, models.ChannelSMS, "+91", nil, "EFIR-1:CRITICAL"))
}

func (s *DedupeSuite) TestFailedSendReleasesKey() {
	ctx := context.Background()
	gomock.InOrder(
		s.next.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "EFIR-2:WARNING").
			Return(dispatch.Retryable(errors.New("timeout"))),
		s.next.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "EFIR-2:WARNING").
			Return(nil),
	)

	s.Require().Error(s.d.Send(ctx, models.ChannelSMS, "+91", nil, "EFIR-2:WARNING"))
	s.Require().NoError(s.d.Send(ctx, models.ChannelSMS, "+91", nil, "EFIR-2:WARNING"))
}

//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"idregistry/internal/identity/store"
	id "idregistry/pkg/domain"
	"idregistry/pkg/platform/sentinel"
	"idregistry/pkg/testutil"
	"idregistry/pkg/testutil/containers"
)

type RedisSummaryCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *store.RedisSummaryCache
}

func TestRedisSummaryCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSummaryCacheSuite))
}

func (s *RedisSummaryCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = store.NewRedisSummaryCache(s.redis.Client, time.Minute)
}

func (s *RedisSummaryCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.Flush(context.Background()))
}

func (s *RedisSummaryCacheSuite) TestSetThenGet() {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	summary := testutil.NewTestRecord(id.NewAccountID(), id.NewAccountID(), now).Summary()

	s.Require().NoError(s.cache.Set(ctx, summary))

	got, err := s.cache.Get(ctx, summary.AccountID)
	s.Require().NoError(err)
	s.Equal(summary, got)
}

func (s *RedisSummaryCacheSuite) TestMiss() {
	_, err := s.cache.Get(context.Background(), id.NewAccountID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisSummaryCacheSuite) TestEntriesExpire() {
	ctx := context.Background()
	short := store.NewRedisSummaryCache(s.redis.Client, time.Second)
	summary := testutil.NewTestRecord(id.NewAccountID(), id.NewAccountID(), time.Now().UTC().Truncate(time.Second)).Summary()
	s.Require().NoError(short.Set(ctx, summary))

	s.Eventually(func() bool {
		_, err := short.Get(ctx, summary.AccountID)
		return err != nil
	}, 5*time.Second, 100*time.Millisecond)
}

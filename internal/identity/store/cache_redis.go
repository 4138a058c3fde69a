package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"idregistry/internal/identity/models"
	id "idregistry/pkg/domain"
	"idregistry/pkg/platform/sentinel"
)

const redisSummaryKeyPrefix = "idregistry:summary:"

// RedisSummaryCache shares verified summaries across instances. Only verified
// summaries are written; they never change, so entries cannot go stale and
// the TTL only bounds memory.
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{client: client, ttl: ttl}
}

// Get returns sentinel.ErrNotFound on a miss.
func (c *RedisSummaryCache) Get(ctx context.Context, accountID id.AccountID) (*models.Summary, error) {
	data, err := c.client.Get(ctx, summaryKey(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get summary cache: %w", err)
	}
	var summary models.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("decode summary cache: %w", err)
	}
	return &summary, nil
}

func (c *RedisSummaryCache) Set(ctx context.Context, summary *models.Summary) error {
	if summary == nil || !summary.Verified {
		return fmt.Errorf("only verified summaries are cacheable")
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary cache: %w", err)
	}
	if err := c.client.Set(ctx, summaryKey(summary.AccountID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set summary cache: %w", err)
	}
	return nil
}

func summaryKey(accountID id.AccountID) string {
	return redisSummaryKeyPrefix + accountID.String()
}

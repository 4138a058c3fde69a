package store

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"idregistry/internal/identity/models"
	id "idregistry/pkg/domain"
	"idregistry/pkg/platform/sentinel"
)

// LocalSummaryCache is the single-instance counterpart of RedisSummaryCache.
type LocalSummaryCache struct {
	cache *gocache.Cache
}

func NewLocalSummaryCache(ttl time.Duration) *LocalSummaryCache {
	return &LocalSummaryCache{cache: gocache.New(ttl, 2*ttl)}
}

func (c *LocalSummaryCache) Get(_ context.Context, accountID id.AccountID) (*models.Summary, error) {
	v, ok := c.cache.Get(accountID.String())
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	summary := v.(models.Summary)
	return &summary, nil
}

func (c *LocalSummaryCache) Set(_ context.Context, summary *models.Summary) error {
	if summary == nil || !summary.Verified {
		return fmt.Errorf("only verified summaries are cacheable")
	}
	c.cache.SetDefault(summary.AccountID.String(), *summary)
	return nil
}

// Len reports the number of cached entries, including expired ones not yet
// purged.
func (c *LocalSummaryCache) Len() int {
	return c.cache.ItemCount()
}

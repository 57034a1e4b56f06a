package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// reactionCountsTTL bounds staleness between toggles happening on other
// instances; invalidation on the local toggle path keeps the common case fresh.
const reactionCountsTTL = 30 * time.Second

// CacheRepository caches hot reaction aggregates in Redis. Every method is
// nil-safe: a service built without Redis degrades to database reads.
type CacheRepository struct {
	client *redis.Client
}

// NewCacheRepository creates a new cache repository. client may be nil.
func NewCacheRepository(client *redis.Client) *CacheRepository {
	return &CacheRepository{client: client}
}

func reactionCountsKey(siteID int64, postSlug string) string {
	return fmt.Sprintf("reactions:counts:%d:%s", siteID, postSlug)
}

// GetReactionCounts returns cached per-key counts, ok=false on miss or when
// the cache is unavailable.
func (r *CacheRepository) GetReactionCounts(ctx context.Context, siteID int64, postSlug string) (map[string]int64, bool) {
	if r.client == nil {
		return nil, false
	}

	val, err := r.client.Get(ctx, reactionCountsKey(siteID, postSlug)).Result()
	if err != nil {
		return nil, false
	}

	counts := make(map[string]int64)
	if err := json.Unmarshal([]byte(val), &counts); err != nil {
		return nil, false
	}
	return counts, true
}

// SetReactionCounts stores per-key counts with a short TTL. Best effort.
func (r *CacheRepository) SetReactionCounts(ctx context.Context, siteID int64, postSlug string, counts map[string]int64) {
	if r.client == nil {
		return
	}

	payload, err := json.Marshal(counts)
	if err != nil {
		return
	}
	r.client.Set(ctx, reactionCountsKey(siteID, postSlug), payload, reactionCountsTTL)
}

// InvalidateReactionCounts drops the cached aggregate after a toggle.
func (r *CacheRepository) InvalidateReactionCounts(ctx context.Context, siteID int64, postSlug string) {
	if r.client == nil {
		return
	}
	r.client.Del(ctx, reactionCountsKey(siteID, postSlug))
}

package repo

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/tastewire/tastewire/internal/modules/model"
)

const cultureCacheKeyPrefix = "qloo:insights:"

// CultureCacheRepo is the content-addressed cache for Cultural-Graph
// responses. Lookup returns (nil, nil) on a miss; entries past the TTL are
// treated as misses even if Redis has not evicted them yet. Store is a plain
// last-write-wins upsert: concurrent misses for the same key both call
// upstream and both write, which is accepted, not prevented.
type CultureCacheRepo interface {
	Lookup(ctx context.Context, requestHash string) (*model.CulturalCacheEntry, error)
	Store(ctx context.Context, entry *model.CulturalCacheEntry) error
}

type cultureCacheRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCultureCacheRepo(rdb *redis.Client, ttl time.Duration) CultureCacheRepo {
	return &cultureCacheRepo{rdb: rdb, ttl: ttl}
}

func (r *cultureCacheRepo) Lookup(ctx context.Context, requestHash string) (*model.CulturalCacheEntry, error) {
	raw, err := r.rdb.Get(ctx, cultureCacheKeyPrefix+requestHash).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var entry model.CulturalCacheEntry
	if err := sonic.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}

	// Soft expiry: the stored timestamp is authoritative, not Redis eviction.
	if time.Since(entry.CreatedAt) > r.ttl {
		return nil, nil
	}
	return &entry, nil
}

func (r *cultureCacheRepo) Store(ctx context.Context, entry *model.CulturalCacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	raw, err := sonic.Marshal(entry)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, cultureCacheKeyPrefix+entry.RequestHash, raw, r.ttl).Err()
}

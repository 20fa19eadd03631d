package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 60 * time.Second

// PageCache is a small JSON cache for rendered page payloads, keyed by
// the page path. Mutations invalidate the pages they affect the same
// way the web tier revalidates "/" and "/<username>".
type PageCache struct {
	R   *redis.Client
	TTL time.Duration
}

func NewPageCache(r *redis.Client) *PageCache {
	return &PageCache{R: r, TTL: defaultTTL}
}

func key(path string) string { return "page:" + path }

// Get unmarshals the cached payload for path into dest. The bool
// reports whether there was a cache hit; cache errors are reported but
// never fatal to the request.
func (pc *PageCache) Get(ctx context.Context, path string, dest interface{}) (bool, error) {
	raw, err := pc.R.Get(ctx, key(path)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (pc *PageCache) Set(ctx context.Context, path string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return pc.R.Set(ctx, key(path), raw, pc.TTL).Err()
}

func (pc *PageCache) Invalidate(ctx context.Context, paths ...string) error {
	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = key(p)
	}
	return pc.R.Del(ctx, keys...).Err()
}

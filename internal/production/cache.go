package production

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DetailCache keeps rendered full-detail views in Redis. Keys are per order,
// so a stage write only evicts the order it touched.
type DetailCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDetailCache instantiates the cache helper. A nil client disables
// caching; every call falls through to the loader.
func NewDetailCache(client *redis.Client, ttl time.Duration) *DetailCache {
	return &DetailCache{client: client, ttl: ttl}
}

func detailKey(noOrden string) string {
	return "production:detail:" + noOrden
}

// Fetch loads a cached detail view or populates it from the loader.
func (c *DetailCache) Fetch(ctx context.Context, noOrden string, loader func(context.Context) (*FullDetail, error)) (*FullDetail, error) {
	if loader == nil {
		return nil, errors.New("production: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	key := detailKey(noOrden)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var detail FullDetail
		if err := json.Unmarshal(payload, &detail); err == nil {
			return &detail, nil
		}
		// Unreadable entry: drop it and rebuild.
		_ = c.client.Del(ctx, key).Err()
	} else if err != redis.Nil {
		return nil, err
	}

	detail, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(detail)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return nil, err
	}
	return detail, nil
}

// InvalidateDetail evicts one order's cached view. It satisfies the stage
// ledger's invalidation hook.
func (c *DetailCache) InvalidateDetail(ctx context.Context, noOrden string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, detailKey(noOrden)).Err()
}

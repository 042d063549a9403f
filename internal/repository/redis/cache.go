package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache is a JSON cache for derived values that can always be recomputed,
// such as language model interpretations. Ticket counts are never stored here.
type Cache struct {
	rdb    *redis.Client
	sf     singleflight.Group
	logger *slog.Logger
}

func New(client *redis.Client, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{rdb: client, logger: logger}
}

func GetJSON[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var zero T

	s, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}

	var out T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return zero, false, fmt.Errorf("decode %s: %w", key, err)
	}

	return out, true, nil
}

func SetJSON(
	ctx context.Context,
	c *Cache,
	key string,
	val any,
	ttl time.Duration,
) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// GetOrSetJSON returns the cached value for key or computes it with loader.
// Concurrent misses for the same key share one loader call. Redis failures
// are logged and treated as misses so the cache never blocks the caller.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	v, ok, err := GetJSON[T](ctx, c, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		return v, nil
	}

	vAny, err, _ := c.sf.Do(key, func() (any, error) {
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if err := SetJSON(ctx, c, key, loaded, ttl); err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
		}
		return loaded, nil
	})
	if err != nil {
		return zero, err
	}

	out, ok := vAny.(T)
	if !ok {
		return zero, errors.New("type assertion failed")
	}

	return out, nil
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idemLockValue = "LOCK"
	idemResPrefix = "RES:"
)

// StoredResponse is a replayable HTTP response.
type StoredResponse struct {
	Status int
	Body   []byte
}

// IdempotencyStore remembers the first successful response for an
// Idempotency-Key. A key holds the "LOCK" marker while a request is in flight
// and "RES:<status>:<body>" once it has completed.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

// AcquireLock marks key as in flight. It reports false when another request
// already holds the key or has completed under it.
func (s *IdempotencyStore) AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, idemLockValue, lockTTL).Result()
}

func (s *IdempotencyStore) SaveResult(ctx context.Context, key string, status int, body []byte) error {
	val := fmt.Sprintf("%s%d:%s", idemResPrefix, status, body)
	return s.rdb.Set(ctx, key, val, s.ttl).Err()
}

// GetResult returns the stored response for key. ok is false while the key is
// missing or still locked.
func (s *IdempotencyStore) GetResult(ctx context.Context, key string) (StoredResponse, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return StoredResponse{}, false, nil
	}
	if err != nil {
		return StoredResponse{}, false, err
	}

	rest, found := strings.CutPrefix(v, idemResPrefix)
	if !found {
		return StoredResponse{}, false, nil
	}

	statusStr, body, found := strings.Cut(rest, ":")
	if !found {
		return StoredResponse{}, false, fmt.Errorf("malformed idempotency record for %s", key)
	}

	status, err := strconv.Atoi(statusStr)
	if err != nil {
		return StoredResponse{}, false, fmt.Errorf("malformed idempotency status for %s: %w", key, err)
	}

	return StoredResponse{Status: status, Body: []byte(body)}, true, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

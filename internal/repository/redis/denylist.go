package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist records logged-out token ids until they would have expired
// anyway.
type TokenDenylist struct {
	rdb *redis.Client
}

func NewTokenDenylist(rdb *redis.Client) *TokenDenylist {
	return &TokenDenylist{rdb: rdb}
}

func (d *TokenDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}

	return d.rdb.Set(ctx, KeyRevokedToken(jti), "1", ttl).Err()
}

func (d *TokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.rdb.Exists(ctx, KeyRevokedToken(jti)).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

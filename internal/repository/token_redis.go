package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

// RedisTokenRepo keeps revoked token ids as Redis keys that expire together
// with the token, so no cleanup is needed.
type RedisTokenRepo struct {
	rdb *redis.Client
}

func NewRedisTokenRepo(rdb *redis.Client) *RedisTokenRepo { return &RedisTokenRepo{rdb: rdb} }

// Revoke stores jti until expiresAt.  Already expired tokens are ignored.
func (r *RedisTokenRepo) Revoke(ctx context.Context, jti string, userID uint64, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedKeyPrefix+jti, strconv.FormatUint(userID, 10), ttl).Err()
}

// IsRevoked reports whether jti is on the revocation list.
func (r *RedisTokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

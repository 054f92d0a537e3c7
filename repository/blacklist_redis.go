// file: repository/blacklist_redis.go

package repository

import (
	"context"
	"go-auth-api/logger"
	"go-auth-api/model"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICacheClient is the subset of the Redis client the blacklist needs.
// *redis.Client satisfies it.
type ICacheClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

const blacklistKeyPrefix = "blacklist:"

// RedisBlacklistRepository keeps one key per revoked jti, expiring together
// with the token it revokes.
type RedisBlacklistRepository struct {
	client ICacheClient
	now    func() time.Time
}

func NewRedisBlacklistRepository(client ICacheClient) *RedisBlacklistRepository {
	return &RedisBlacklistRepository{client: client, now: time.Now}
}

func blacklistKey(jti string) string {
	return blacklistKeyPrefix + jti
}

// Add sets the key with NX so concurrent revocations of one jti collapse into
// a single write. Tokens already past their expiry are not stored.
func (r *RedisBlacklistRepository) Add(ctx context.Context, entry *model.BlacklistedToken) (bool, error) {
	ttl := entry.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		logger.Log.WithField("jti", entry.JTI).Debug("Skipping blacklist of an already expired token")
		return false, nil
	}

	added, err := r.client.SetNX(ctx, blacklistKey(entry.JTI), strconv.Itoa(entry.UserID), ttl).Result()
	if err != nil {
		logger.Log.WithError(err).WithField("jti", entry.JTI).Error("Failed to blacklist token in redis")
		return false, err
	}
	return added, nil
}

func (r *RedisBlacklistRepository) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		logger.Log.WithError(err).WithField("jti", jti).Error("Failed to look up blacklist key in redis")
		return false, err
	}
	return n > 0, nil
}

// DeleteExpired is a no-op: Redis evicts keys when their TTL lapses.
func (r *RedisBlacklistRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

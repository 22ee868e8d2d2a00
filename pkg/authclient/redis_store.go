package authclient

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one session's pair in a Redis hash. It suits server-side
// holders of a pair, such as a backend-for-frontend keyed by browser session.
type RedisStore struct {
	rdb redis.UniversalClient
	key string
}

// NewRedisStore stores the pair under the hash at key.
func NewRedisStore(rdb redis.UniversalClient, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) SetPair(ctx context.Context, pair Pair) error {
	err := s.rdb.HSet(ctx, s.key, AccessTokenKey, pair.AccessToken, RefreshTokenKey, pair.RefreshToken).Err()
	return errors.Wrap(err, "redis hset")
}

func (s *RedisStore) Access(ctx context.Context) (string, error) {
	return s.get(ctx, AccessTokenKey)
}

func (s *RedisStore) Refresh(ctx context.Context) (string, error) {
	return s.get(ctx, RefreshTokenKey)
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return errors.Wrap(s.rdb.Del(ctx, s.key).Err(), "redis del")
}

func (s *RedisStore) get(ctx context.Context, field string) (string, error) {
	val, err := s.rdb.HGet(ctx, s.key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, errors.Wrap(err, "redis hget")
}

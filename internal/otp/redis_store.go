package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "buspass:otp:"

// RedisStore shares codes across instances through Redis key expiry.
type RedisStore struct {
	Client redis.UniversalClient
}

func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{Client: redis.NewClient(&redis.Options{Addr: addr})}
}

func redisKey(key string) string { return redisPrefix + key }

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisStore) Save(ctx context.Context, key, code string, ttl time.Duration) error {
	if err := r.Client.Set(ctx, redisKey(key), code, ttl).Err(); err != nil {
		return fmt.Errorf("redis set otp: %w", err)
	}
	return nil
}

// consumeScript deletes the key only when it holds the submitted code.
// It returns 1 on success, 0 on mismatch and -1 when the key is absent.
var consumeScript = redis.NewScript(`
local stored = redis.call("GET", KEYS[1])
if not stored then
	return -1
end
if stored ~= ARGV[1] then
	return 0
end
redis.call("DEL", KEYS[1])
return 1
`)

// Verify checks and consumes the code in a single script so concurrent
// requests cannot both succeed.
func (r *RedisStore) Verify(ctx context.Context, key, code string) error {
	n, err := consumeScript.Run(ctx, r.Client, []string{redisKey(key)}, code).Int64()
	if err != nil {
		return fmt.Errorf("redis verify otp: %w", err)
	}
	return consumeResult(n)
}

func consumeResult(n int64) error {
	switch n {
	case 1:
		return nil
	case 0:
		return ErrMismatch
	default:
		return ErrNotFound
	}
}

func (r *RedisStore) Close() error {
	return r.Client.Close()
}

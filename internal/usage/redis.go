package usage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "promptiq:usage:"

// RedisStore keeps usage records in a Redis hash per client key, for
// deployments that want counts to survive process restarts. Increments use
// HINCRBY, so concurrent requests for the same key cannot lose an update.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis using a redis:// URL and verifies the
// connection before returning.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Check reads the usage hash for a key. A missing hash yields a zero record.
func (s *RedisStore) Check(ctx context.Context, key string) (Record, error) {
	fields, err := s.client.HGetAll(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return Record{}, fmt.Errorf("failed to read usage for %s: %w", key, err)
	}

	var record Record
	if raw, ok := fields["count"]; ok {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return Record{}, fmt.Errorf("corrupt usage count for %s: %w", key, err)
		}
		record.Count = count
	}
	record.LastUsed = fields["last_used"]
	return record, nil
}

// Increment atomically bumps the count and stamps the consumption time.
func (s *RedisStore) Increment(ctx context.Context, key string) (int, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.HIncrBy(ctx, redisKeyPrefix+key, "count", 1)
	pipe.HSet(ctx, redisKeyPrefix+key, "last_used", nowRFC3339())
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment usage for %s: %w", key, err)
	}
	return int(incr.Val()), nil
}

// Close closes the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

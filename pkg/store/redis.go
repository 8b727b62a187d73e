package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/genemap/genemap/pkg/errors"
)

// RedisStore persists values in a Redis instance.
type RedisStore struct {
	client *redis.Client
}

// NewRedis connects to the Redis instance at addr (host:port).
func NewRedis(addr string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Ping verifies the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "pinging redis")
	}
	return nil
}

// Get retrieves the value at key. A missing key is a miss, not an error.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStore, err, "reading %q", key)
	}
	return data, true, nil
}

// Set stores data under key without expiry.
func (s *RedisStore) Set(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "writing %q", key)
	}
	return nil
}

// Close releases the client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)

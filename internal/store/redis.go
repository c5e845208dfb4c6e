package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps every key as a plain Redis string.
type RedisStore struct {
	client *redis.Client
	owned  bool
}

// NewRedisStore wraps an already connected client. The client is not
// closed by Close unless owned is set.
func NewRedisStore(client *redis.Client, owned bool) *RedisStore {
	return &RedisStore{client: client, owned: owned}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisStore) Close() error {
	if r.owned {
		return r.client.Close()
	}
	return nil
}

package store

import (
	"context"
	stderrors "errors"
	"net"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps values as Redis strings under prefix+key.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the Redis server at addr and checks that it
// answers.
func NewRedisStore(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, ioError(err, "connect redis", addr)
	}
	return NewRedisStoreFromClient(client, prefix), nil
}

// NewRedisStoreFromClient wraps an existing client. The store takes
// ownership of client and closes it on Close.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get fetches prefix+key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := withRetry(ctx, func() error {
		v, err := s.client.Get(ctx, s.key(key)).Bytes()
		if err != nil {
			return classify(err)
		}
		data = v
		return nil
	})
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ioError(err, "redis get", key)
	}
	return data, true, nil
}

// Put sets prefix+key without expiry.
func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	err := withRetry(ctx, func() error {
		return classify(s.client.Set(ctx, s.key(key), data, 0).Err())
	})
	if err != nil {
		return ioError(err, "redis set", key)
	}
	return nil
}

// Delete removes prefix+key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	err := withRetry(ctx, func() error {
		return classify(s.client.Del(ctx, s.key(key)).Err())
	})
	if err != nil {
		return ioError(err, "redis del", key)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) key(k string) string { return s.prefix + k }

// classify marks network failures as retryable.
func classify(err error) error {
	var ne net.Error
	if stderrors.As(err, &ne) {
		return retryable(err)
	}
	return err
}

var _ Store = (*RedisStore)(nil)

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend is the narrow slice of the redis client the cache needs.
// *redis.Client satisfies it.
type Backend interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type Config struct {
	Prefix string
	TTL    time.Duration // 0 = entries never expire
}

// RedisCache is a cache-aside key-value store keyed on a namespace plus the
// literal call arguments. No normalization is applied to arguments: "Foo"
// and "foo" are distinct entries.
type RedisCache struct {
	backend Backend
	config  Config
}

func NewRedisCache(backend Backend, config Config) *RedisCache {
	return &RedisCache{
		backend: backend,
		config:  config,
	}
}

func (c *RedisCache) key(namespace string, args []string) string {
	parts := append([]string{c.config.Prefix, namespace}, args...)
	return strings.Join(parts, "_")
}

// Codec pairs a serializer and deserializer for cached values.
type Codec[T any] struct {
	Marshal   func(T) ([]byte, error)
	Unmarshal func([]byte) (T, error)
}

// JSONCodec is the default codec.
func JSONCodec[T any]() Codec[T] {
	return Codec[T]{
		Marshal: func(v T) ([]byte, error) {
			return json.Marshal(v)
		},
		Unmarshal: func(data []byte) (T, error) {
			var v T
			err := json.Unmarshal(data, &v)
			return v, err
		},
	}
}

// Cached returns the cached value for (namespace, args) if present,
// otherwise invokes compute, stores its result and returns it. A cache
// backend failure propagates; there is no fallback to recomputation, since
// recomputing under a backend outage invites a stampede.
func Cached[T any](ctx context.Context, c *RedisCache, namespace string, args []string, codec Codec[T], compute func(context.Context) (T, error)) (T, error) {
	var zero T

	cached, err := GetIfCached(ctx, c, namespace, args, codec)
	if err != nil {
		return zero, err
	}
	if cached != nil {
		return *cached, nil
	}

	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	data, err := codec.Marshal(value)
	if err != nil {
		return zero, fmt.Errorf("serialize cache value: %w", err)
	}

	if err := c.backend.Set(ctx, c.key(namespace, args), data, c.config.TTL).Err(); err != nil {
		return zero, fmt.Errorf("cache write: %w", err)
	}

	return value, nil
}

// GetIfCached is a read-only peek: it returns the cached value or nil
// without ever invoking the compute path.
func GetIfCached[T any](ctx context.Context, c *RedisCache, namespace string, args []string, codec Codec[T]) (*T, error) {
	data, err := c.backend.Get(ctx, c.key(namespace, args)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache read: %w", err)
	}

	value, err := codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("deserialize cache value: %w", err)
	}
	return &value, nil
}

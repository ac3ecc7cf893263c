package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisNamespace prefixes every key the RedisAdapter writes.
const DefaultRedisNamespace = "baton:"

// RedisConfig describes the Redis connection.
type RedisConfig struct {
	Address  string
	Password string
	DB       int

	// Namespace prefixes every key. Default is DefaultRedisNamespace.
	Namespace string

	// TTL expires stored values. Zero keeps them forever.
	TTL time.Duration
}

// RedisAdapter stores values as Redis strings.
type RedisAdapter struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisAdapter connects to Redis and checks the connection.
func NewRedisAdapter(ctx context.Context, cfg RedisConfig) (*RedisAdapter, error) {
	if cfg.Address == "" {
		return nil, errors.New("store: redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: connect to redis: %w", err)
	}
	return NewRedisAdapterFromClient(client, cfg.Namespace, cfg.TTL), nil
}

// NewRedisAdapterFromClient wraps an existing client. An empty namespace
// uses DefaultRedisNamespace.
func NewRedisAdapterFromClient(client *redis.Client, namespace string, ttl time.Duration) *RedisAdapter {
	if namespace == "" {
		namespace = DefaultRedisNamespace
	}
	return &RedisAdapter{client: client, namespace: namespace, ttl: ttl}
}

// Get retrieves a value by key.
func (r *RedisAdapter) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	data, err := r.client.Get(ctx, r.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: redis get %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores a value by key.
func (r *RedisAdapter) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := r.client.Set(ctx, r.namespace+key, []byte(value), r.ttl).Err(); err != nil {
		return fmt.Errorf("store: redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (r *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.namespace+key).Err(); err != nil {
		return fmt.Errorf("store: redis delete %s: %w", key, err)
	}
	return nil
}

// Keys scans for keys starting with prefix and returns them sorted,
// without the namespace.
func (r *RedisAdapter) Keys(ctx context.Context, prefix string) ([]string, error) {
	match := escapeGlob(r.namespace+prefix) + "*"
	var keys []string
	iter := r.client.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("store: redis scan: %w", err)
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

// Close closes the Redis connection.
func (r *RedisAdapter) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

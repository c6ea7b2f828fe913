// Package cache provides Redis caching.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/havenstays/booking-backend/internal/common/config"
)

var rdb *redis.Client

// Init opens the Redis connection.
func Init(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb = redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	return rdb, nil
}

// GetClient returns the Redis client.
func GetClient() *redis.Client {
	return rdb
}

// Close closes the Redis connection.
func Close() error {
	if rdb != nil {
		return rdb.Close()
	}
	return nil
}

// Store is a thin typed wrapper around a Redis client. Services hold a
// Store rather than the raw client so tests can point it at miniredis.
type Store struct {
	client *redis.Client
}

// NewStore creates a Store backed by the given client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Set marshals value as JSON and stores it under key.
func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return s.client.Set(ctx, key, data, expiration).Err()
}

// Get loads key and unmarshals it into dest. Returns redis.Nil when the
// key is absent.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes the given keys.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsMiss reports whether err is a cache miss.
func IsMiss(err error) bool {
	return err == redis.Nil
}

// Key prefixes.
const (
	KeyPrefixTicket = "ticket:"
)

// BuildKey joins a prefix and parts into a cache key.
func BuildKey(prefix string, parts ...string) string {
	key := prefix
	for _, part := range parts {
		key += part + ":"
	}
	return key[:len(key)-1]
}

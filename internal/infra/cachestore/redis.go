package cachestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisStore keeps entries under keyPrefix, or optimizer:cache: when empty.
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = cacheKeyPrefix
	}
	return &RedisStore{
		client: client,
		prefix: keyPrefix,
		now:    time.Now,
	}
}

func (s *RedisStore) key(key domain.CohortKey) string {
	return s.prefix + key.String()
}

func (s *RedisStore) Get(ctx context.Context, key domain.CohortKey) (*domain.CacheEntry, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheEntryNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrRedisConnection, err)
	}

	return entryFor(key, data)
}

// Put replaces the cohort's entry. The key expires with the entry; an entry
// that is already past ExpiresAt removes the key instead.
func (s *RedisStore) Put(ctx context.Context, key domain.CohortKey, entry *domain.CacheEntry) error {
	data, err := encodeEntryFor(key, entry)
	if err != nil {
		return err
	}

	redisKey := s.key(key)
	ttl := entry.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		if err := s.client.Del(ctx, redisKey).Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrRedisConnection, err)
		}
		return nil
	}

	if err := s.client.Set(ctx, redisKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisConnection, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close leaves the client open; its owner closes it.
func (s *RedisStore) Close() error {
	return nil
}

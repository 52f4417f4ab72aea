package cachestore

import (
	"context"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

// Store is a cache store the service can health-check and shut down.
type Store interface {
	domain.CacheStore
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*BadgerStore)(nil)
)

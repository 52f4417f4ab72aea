package config

import "os"

const (
	cacheStoreEnv = "CACHE_STORE"
	badgerPathEnv = "BADGER_PATH"

	defaultCacheStore = CacheStoreRedis
)

type CacheStoreKind string

const (
	CacheStoreRedis  CacheStoreKind = "redis"
	CacheStoreBadger CacheStoreKind = "badger"
)

type CacheStoreConfig struct {
	Store CacheStoreKind
	// BadgerPath is the on-disk directory; empty runs badger in memory.
	BadgerPath string
}

func LoadCacheStoreConfig() *CacheStoreConfig {
	store := CacheStoreKind(os.Getenv(cacheStoreEnv))
	if store == "" {
		store = defaultCacheStore
	}

	return &CacheStoreConfig{
		Store:      store,
		BadgerPath: os.Getenv(badgerPathEnv),
	}
}

func (c *CacheStoreConfig) Validate() error {
	switch c.Store {
	case CacheStoreRedis, CacheStoreBadger:
		return nil
	default:
		return ErrUnknownCacheStore
	}
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	redisAddrEnv        = "REDIS_ADDR"
	redisPasswordEnv    = "REDIS_PASSWORD"
	redisDBEnv          = "REDIS_DB"
	redisTLSEnv         = "REDIS_TLS"
	redisKeyPrefixEnv   = "REDIS_KEY_PREFIX"
	redisDialTimeoutEnv = "REDIS_DIAL_TIMEOUT"

	defaultRedisAddr        = "localhost:6379"
	defaultRedisKeyPrefix   = "optimizer:cache:"
	defaultRedisDialTimeout = 5 * time.Second
)

// RedisConfig locates the redis holding cache entries. Entries live under
// KeyPrefix so several deployments can share one database.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	TLS         bool
	KeyPrefix   string
	DialTimeout time.Duration
}

func LoadRedisConfig() (*RedisConfig, error) {
	cfg := &RedisConfig{
		Addr:      os.Getenv(redisAddrEnv),
		Password:  os.Getenv(redisPasswordEnv),
		TLS:       os.Getenv(redisTLSEnv) == "true",
		KeyPrefix: os.Getenv(redisKeyPrefixEnv),
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultRedisAddr
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultRedisKeyPrefix
	} else if !strings.HasSuffix(cfg.KeyPrefix, ":") {
		cfg.KeyPrefix += ":"
	}

	if raw := os.Getenv(redisDBEnv); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			return nil, ErrInvalidRedisDB
		}
		cfg.DB = db
	}

	timeout, err := durationEnv(redisDialTimeoutEnv, defaultRedisDialTimeout)
	if err != nil {
		return nil, err
	}
	cfg.DialTimeout = timeout

	return cfg, nil
}

func (c *RedisConfig) Validate() error {
	if c == nil || c.Addr == "" {
		return ErrRedisAddrMissing
	}
	return nil
}

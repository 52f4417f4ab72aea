package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Port       string
	LogLevel   slog.Level
	Redis      *RedisConfig
	CacheStore *CacheStoreConfig
	Engagement *EngagementConfig
	Optimizer  *OptimizerConfig
	Breaker    *BreakerConfig
}

func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	redisConfig, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}

	optimizerConfig, err := LoadOptimizerConfig()
	if err != nil {
		return nil, err
	}

	breakerConfig, err := LoadBreakerConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:       port,
		LogLevel:   parseLogLevel(os.Getenv("LOG_LEVEL")),
		Redis:      redisConfig,
		CacheStore: LoadCacheStoreConfig(),
		Engagement: LoadEngagementConfig(),
		Optimizer:  optimizerConfig,
		Breaker:    breakerConfig,
	}, nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.CacheStore.Store == CacheStoreRedis {
		if err := c.Redis.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.CacheStore.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Engagement.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Optimizer.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Breaker.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %w", errors.Join(errs...))
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

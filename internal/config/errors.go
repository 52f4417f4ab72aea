package config

import "errors"

var (
	ErrRedisAddrMissing = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB   = errors.New("REDIS_DB must be a valid integer")

	ErrUnknownCacheStore       = errors.New("CACHE_STORE must be one of redis, badger")
	ErrUnknownEngagementSource = errors.New("unsupported ENGAGEMENT_SOURCE")
	ErrEngagementSourceConfig  = errors.New("engagement source is not configured")

	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidNumber   = errors.New("invalid number")
	ErrInvalidBudget   = errors.New("OPTIMIZER_BUDGET_BUFFER must be shorter than OPTIMIZER_TIME_BUDGET")

	ErrUnknownTriggerKey = errors.New("unknown trigger key")
	ErrInvalidTrigger    = errors.New("invalid trigger configuration")
)

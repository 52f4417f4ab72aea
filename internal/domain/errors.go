package domain

import "errors"

var (
	ErrUnknownChannel     = errors.New("unknown channel")
	ErrInvalidCohortKey   = errors.New("invalid cohort key")
	ErrInvalidCacheEntry  = errors.New("invalid cache entry")
	ErrCacheEntryNotFound = errors.New("cache entry not found")
	ErrInvalidSample      = errors.New("invalid engagement sample")
)

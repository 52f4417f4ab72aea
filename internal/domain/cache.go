package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=cache.go -destination=cache_mock.go -package=domain

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DataFreshness records how much data backed a cached calculation.
type DataFreshness struct {
	TotalSamples     int       `json:"total_samples"`
	DateRange        DateRange `json:"date_range"`
	LastSourceUpdate time.Time `json:"last_source_update"`
}

// CacheEntry is the persisted outcome of one cohort calculation.
// It is replaced wholesale on every successful calculation.
type CacheEntry struct {
	CohortKey     CohortKey           `json:"cohort_key"`
	Results       []OptimalTimeResult `json:"results"`
	CalculatedAt  time.Time           `json:"calculated_at"`
	ExpiresAt     time.Time           `json:"expires_at"`
	DataFreshness DataFreshness       `json:"data_freshness"`
}

func (e *CacheEntry) Validate() error {
	if e == nil {
		return ErrInvalidCacheEntry
	}
	if !e.ExpiresAt.After(e.CalculatedAt) {
		return ErrInvalidCacheEntry
	}
	if len(e.Results) > MaxResultsPerCohort {
		return ErrInvalidCacheEntry
	}
	return e.CohortKey.Validate()
}

// CacheStore persists one CacheEntry per cohort.
type CacheStore interface {
	Get(ctx context.Context, key CohortKey) (*CacheEntry, error)
	Put(ctx context.Context, key CohortKey, entry *CacheEntry) error
}

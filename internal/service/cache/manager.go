package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
	"github.com/sngor/bayon-coagent-sub013/internal/service/fallback"
)

const (
	day = 24 * time.Hour

	BaseTTL     = 7 * day
	MediumTTL   = 14 * day
	ExtendedTTL = 21 * day
	FallbackTTL = 3 * day

	// StalenessCeiling bounds the age of a usable entry regardless of its TTL.
	StalenessCeiling = 7 * day

	MediumTTLSamples   = 50
	ExtendedTTLSamples = 100

	// MinValidSamples is the smallest sample count a cached result may rest on.
	MinValidSamples = 10
)

type Manager struct {
	store domain.CacheStore
	now   func() time.Time
}

func NewManager(store domain.CacheStore, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store: store,
		now:   now,
	}
}

// TTLForSamples scales the expiry horizon with the data behind a result.
func TTLForSamples(totalSamples int) time.Duration {
	switch {
	case totalSamples >= ExtendedTTLSamples:
		return ExtendedTTL
	case totalSamples >= MediumTTLSamples:
		return MediumTTL
	default:
		return BaseTTL
	}
}

// IsCacheValid reports whether entry may be served at now. Expiry, staleness
// and sample volume are each checked on their own.
func IsCacheValid(entry *domain.CacheEntry, now time.Time) bool {
	if entry == nil {
		return false
	}
	if now.After(entry.ExpiresAt) {
		return false
	}
	if now.Sub(entry.CalculatedAt) > StalenessCeiling {
		return false
	}
	return entry.DataFreshness.TotalSamples >= MinValidSamples
}

// Get returns the stored entry for key, or nil when none exists.
func (m *Manager) Get(ctx context.Context, key domain.CohortKey) (*domain.CacheEntry, error) {
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("get cache entry %s: %w", key, err)
	}
	entry, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheEntryNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cache entry %s: %w", key, err)
	}
	return entry, nil
}

// Lookup returns the stored entry for key and whether it is still valid.
func (m *Manager) Lookup(ctx context.Context, key domain.CohortKey) (*domain.CacheEntry, bool, error) {
	entry, err := m.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if entry == nil {
		return nil, false, nil
	}

	valid := IsCacheValid(entry, m.now())
	if !valid {
		slog.DebugContext(ctx, "cache entry not usable",
			slog.String("cohort", key.String()),
			slog.Time("calculated_at", entry.CalculatedAt),
			slog.Time("expires_at", entry.ExpiresAt),
			slog.Int("total_samples", entry.DataFreshness.TotalSamples),
		)
	}
	return entry, valid, nil
}

// Put stores a calculated result with a TTL adapted to its sample volume.
func (m *Manager) Put(ctx context.Context, key domain.CohortKey, results []domain.OptimalTimeResult, freshness domain.DataFreshness, calculatedAt time.Time) (*domain.CacheEntry, error) {
	entry := NewEntry(key, results, freshness, calculatedAt)
	if err := m.put(ctx, key, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// PutFallback stores the channel's catalog slots with a short TTL and a zero
// sample count so the next run recomputes.
func (m *Manager) PutFallback(ctx context.Context, key domain.CohortKey, freshness domain.DataFreshness, calculatedAt time.Time) (*domain.CacheEntry, error) {
	entry, err := FallbackEntry(key, freshness, calculatedAt)
	if err != nil {
		return nil, err
	}
	if err := m.put(ctx, key, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// NewEntry builds the entry Put would store without writing it.
func NewEntry(key domain.CohortKey, results []domain.OptimalTimeResult, freshness domain.DataFreshness, calculatedAt time.Time) *domain.CacheEntry {
	return &domain.CacheEntry{
		CohortKey:     key,
		Results:       results,
		CalculatedAt:  calculatedAt,
		ExpiresAt:     calculatedAt.Add(TTLForSamples(freshness.TotalSamples)),
		DataFreshness: freshness,
	}
}

// FallbackEntry builds the entry PutFallback would store without writing it.
func FallbackEntry(key domain.CohortKey, freshness domain.DataFreshness, calculatedAt time.Time) (*domain.CacheEntry, error) {
	results, err := fallback.Results(key.Channel, calculatedAt)
	if err != nil {
		return nil, fmt.Errorf("fallback results for %s: %w", key, err)
	}

	freshness.TotalSamples = 0
	return &domain.CacheEntry{
		CohortKey:     key,
		Results:       results,
		CalculatedAt:  calculatedAt,
		ExpiresAt:     calculatedAt.Add(FallbackTTL),
		DataFreshness: freshness,
	}, nil
}

func (m *Manager) put(ctx context.Context, key domain.CohortKey, entry *domain.CacheEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("cache entry %s: %w", key, err)
	}
	if err := m.store.Put(ctx, key, entry); err != nil {
		return fmt.Errorf("put cache entry %s: %w", key, err)
	}
	return nil
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
	"go.uber.org/mock/gomock"
)

var (
	now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	key = domain.NewCohortKey("user-1", domain.ChannelInstagram, "blog_post")
)

func fixedClock() time.Time { return now }

func TestTTLForSamples(t *testing.T) {
	tests := []struct {
		samples int
		want    time.Duration
	}{
		{0, 7 * day},
		{49, 7 * day},
		{50, 14 * day},
		{99, 14 * day},
		{100, 21 * day},
		{500, 21 * day},
	}

	for _, tt := range tests {
		if got := TTLForSamples(tt.samples); got != tt.want {
			t.Errorf("TTLForSamples(%d): got %v, want %v", tt.samples, got, tt.want)
		}
	}
}

func TestIsCacheValid(t *testing.T) {
	valid := func() *domain.CacheEntry {
		return &domain.CacheEntry{
			CohortKey:     key,
			CalculatedAt:  now.Add(-2 * day),
			ExpiresAt:     now.Add(5 * day),
			DataFreshness: domain.DataFreshness{TotalSamples: 40},
		}
	}

	tests := []struct {
		name   string
		mutate func(e *domain.CacheEntry)
		want   bool
	}{
		{
			name:   "all conditions hold",
			mutate: func(e *domain.CacheEntry) {},
			want:   true,
		},
		{
			name:   "expired",
			mutate: func(e *domain.CacheEntry) { e.ExpiresAt = now.Add(-time.Second) },
			want:   false,
		},
		{
			name: "stale but not expired",
			mutate: func(e *domain.CacheEntry) {
				e.CalculatedAt = now.Add(-8 * day)
				e.ExpiresAt = now.Add(13 * day)
			},
			want: false,
		},
		{
			name:   "too few samples",
			mutate: func(e *domain.CacheEntry) { e.DataFreshness.TotalSamples = 9 },
			want:   false,
		},
		{
			name:   "exactly at expiry",
			mutate: func(e *domain.CacheEntry) { e.ExpiresAt = now },
			want:   true,
		},
		{
			name:   "exactly at staleness ceiling",
			mutate: func(e *domain.CacheEntry) { e.CalculatedAt = now.Add(-7 * day) },
			want:   true,
		},
		{
			name:   "exactly minimum samples",
			mutate: func(e *domain.CacheEntry) { e.DataFreshness.TotalSamples = 10 },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := valid()
			tt.mutate(entry)
			if got := IsCacheValid(entry, now); got != tt.want {
				t.Errorf("IsCacheValid: got %v, want %v", got, tt.want)
			}
		})
	}

	if IsCacheValid(nil, now) {
		t.Error("IsCacheValid(nil): got true, want false")
	}
}

func TestManager_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := domain.NewMockCacheStore(ctrl)
		store.EXPECT().Get(gomock.Any(), key).Return(nil, domain.ErrCacheEntryNotFound)

		entry, valid, err := NewManager(store, fixedClock).Lookup(ctx, key)
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if entry != nil || valid {
			t.Errorf("got (%v, %v), want (nil, false)", entry, valid)
		}
	})

	t.Run("valid entry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := domain.NewMockCacheStore(ctrl)
		stored := &domain.CacheEntry{
			CohortKey:     key,
			CalculatedAt:  now.Add(-day),
			ExpiresAt:     now.Add(13 * day),
			DataFreshness: domain.DataFreshness{TotalSamples: 60},
		}
		store.EXPECT().Get(gomock.Any(), key).Return(stored, nil)

		entry, valid, err := NewManager(store, fixedClock).Lookup(ctx, key)
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if entry != stored || !valid {
			t.Errorf("got (%v, %v), want stored entry and valid", entry, valid)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := domain.NewMockCacheStore(ctrl)
		storeErr := errors.New("connection refused")
		store.EXPECT().Get(gomock.Any(), key).Return(nil, storeErr)

		_, _, err := NewManager(store, fixedClock).Lookup(ctx, key)
		if !errors.Is(err, storeErr) {
			t.Errorf("err: got %v, want wrapped %v", err, storeErr)
		}
	})
}

func TestManager_LookupRejectsAmbiguousKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockCacheStore(ctrl)
	store.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)

	ambiguous := domain.NewCohortKey("u:facebook:x", domain.ChannelFacebook, "y")
	_, _, err := NewManager(store, fixedClock).Lookup(context.Background(), ambiguous)
	if !errors.Is(err, domain.ErrInvalidCohortKey) {
		t.Errorf("Lookup: got %v, want %v", err, domain.ErrInvalidCohortKey)
	}
}

func TestManager_Put(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockCacheStore(ctrl)

	var stored *domain.CacheEntry
	store.EXPECT().Put(gomock.Any(), key, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.CohortKey, e *domain.CacheEntry) error {
			stored = e
			return nil
		},
	)

	results := []domain.OptimalTimeResult{{Time: "09:00", DayOfWeek: 2, ExpectedEngagement: 0.05, Confidence: 0.8}}
	freshness := domain.DataFreshness{TotalSamples: 120}

	entry, err := NewManager(store, fixedClock).Put(context.Background(), key, results, freshness, now)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if entry != stored {
		t.Error("returned entry differs from stored entry")
	}
	if got := entry.ExpiresAt.Sub(entry.CalculatedAt); got != 21*day {
		t.Errorf("TTL: got %v, want %v", got, 21*day)
	}
	if !entry.CalculatedAt.Equal(now) {
		t.Errorf("CalculatedAt: got %v, want %v", entry.CalculatedAt, now)
	}
}

func TestManager_PutFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockCacheStore(ctrl)
	store.EXPECT().Put(gomock.Any(), key, gomock.Any()).Return(nil)

	freshness := domain.DataFreshness{TotalSamples: 5}

	entry, err := NewManager(store, fixedClock).PutFallback(context.Background(), key, freshness, now)
	if err != nil {
		t.Fatalf("PutFallback: %v", err)
	}
	if got := entry.ExpiresAt.Sub(entry.CalculatedAt); got != FallbackTTL {
		t.Errorf("TTL: got %v, want %v", got, FallbackTTL)
	}
	if entry.DataFreshness.TotalSamples != 0 {
		t.Errorf("TotalSamples: got %d, want 0", entry.DataFreshness.TotalSamples)
	}
	if len(entry.Results) != 3 {
		t.Errorf("Results: got %d, want 3", len(entry.Results))
	}
	if IsCacheValid(entry, now) {
		t.Error("fallback entry should never be served from cache")
	}
}

func TestManager_PutStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockCacheStore(ctrl)
	storeErr := errors.New("write timeout")
	store.EXPECT().Put(gomock.Any(), key, gomock.Any()).Return(storeErr)

	_, err := NewManager(store, fixedClock).Put(context.Background(), key, nil, domain.DataFreshness{TotalSamples: 30}, now)
	if !errors.Is(err, storeErr) {
		t.Errorf("err: got %v, want wrapped %v", err, storeErr)
	}
}

package cachestore

import (
	"reflect"
	"testing"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

func assertEntryEqual(t *testing.T, got, want *domain.CacheEntry) {
	t.Helper()

	if got.CohortKey != want.CohortKey {
		t.Errorf("CohortKey: got %v, want %v", got.CohortKey, want.CohortKey)
	}
	if !got.CalculatedAt.Equal(want.CalculatedAt) {
		t.Errorf("CalculatedAt: got %v, want %v", got.CalculatedAt, want.CalculatedAt)
	}
	if !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("ExpiresAt: got %v, want %v", got.ExpiresAt, want.ExpiresAt)
	}
	if got.DataFreshness.TotalSamples != want.DataFreshness.TotalSamples {
		t.Errorf("TotalSamples: got %d, want %d", got.DataFreshness.TotalSamples, want.DataFreshness.TotalSamples)
	}
	if len(got.Results) != len(want.Results) {
		t.Fatalf("Results: got %d, want %d", len(got.Results), len(want.Results))
	}
	for i := range want.Results {
		g, w := got.Results[i], want.Results[i]
		if !g.Historical.LastCalculated.Equal(w.Historical.LastCalculated) {
			t.Errorf("Results[%d].LastCalculated: got %v, want %v", i, g.Historical.LastCalculated, w.Historical.LastCalculated)
		}
		g.Historical.LastCalculated = w.Historical.LastCalculated
		if !reflect.DeepEqual(g, w) {
			t.Errorf("Results[%d]: got %+v, want %+v", i, g, w)
		}
	}
}

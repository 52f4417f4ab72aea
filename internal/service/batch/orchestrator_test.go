package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/sngor/bayon-coagent-sub013/internal/config"
	"github.com/sngor/bayon-coagent-sub013/internal/domain"
	"github.com/sngor/bayon-coagent-sub013/internal/service/cache"
	"github.com/sngor/bayon-coagent-sub013/internal/service/fallback"
	"go.uber.org/mock/gomock"
)

// 2026-03-05 is a Thursday; 2026-03-03 is the Tuesday before it.
var (
	testNow     = time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	lastTuesday = time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(source domain.EngagementRepository, store domain.CacheStore, recorder domain.ResultRecorder, clock *fakeClock) *Orchestrator {
	return NewOrchestrator(
		source,
		cache.NewManager(store, clock.Now),
		recorder,
		config.DefaultOptimizerConfig(),
		nil,
		discardLogger(),
		clock.Now,
	)
}

func testTrigger(userIDs ...string) *config.Trigger {
	trigger := config.DefaultTrigger()
	trigger.UserIDs = userIDs
	trigger.Channels = []domain.Channel{domain.ChannelInstagram}
	trigger.ContentTypes = []string{"blog_post"}
	return &trigger
}

func sortSamples(samples []domain.EngagementSample) []domain.EngagementSample {
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].PublishedAt.Before(samples[j].PublishedAt)
	})
	return samples
}

// scenarioASamples returns 25 samples, 20 of them at Tuesday 09:xx with an
// identical engagement rate.
func scenarioASamples() []domain.EngagementSample {
	var samples []domain.EngagementSample
	for w := 0; w < 10; w++ {
		day := lastTuesday.AddDate(0, 0, -7*w)
		for _, minute := range []int{0, 30} {
			samples = append(samples, domain.EngagementSample{
				Channel:        domain.ChannelInstagram,
				ContentType:    "blog_post",
				PublishedAt:    day.Add(9*time.Hour + time.Duration(minute)*time.Minute),
				EngagementRate: 0.05,
			})
		}
	}
	scattered := []time.Time{
		lastTuesday.AddDate(0, 0, -1).Add(8 * time.Hour),  // Monday 08:00
		lastTuesday.AddDate(0, 0, 1).Add(15 * time.Hour),  // Wednesday 15:00
		lastTuesday.AddDate(0, 0, -5).Add(17 * time.Hour), // Thursday 17:00
		lastTuesday.AddDate(0, 0, -4).Add(20 * time.Hour), // Friday 20:00
		lastTuesday.AddDate(0, 0, -3).Add(6 * time.Hour),  // Saturday 06:00
	}
	for i, ts := range scattered {
		samples = append(samples, domain.EngagementSample{
			Channel:        domain.ChannelInstagram,
			ContentType:    "blog_post",
			PublishedAt:    ts,
			EngagementRate: 0.01 * float64(i+1),
		})
	}
	return sortSamples(samples)
}

func fewSamples(n int) []domain.EngagementSample {
	samples := make([]domain.EngagementSample, n)
	for i := range samples {
		samples[i] = domain.EngagementSample{
			Channel:        domain.ChannelInstagram,
			ContentType:    "blog_post",
			PublishedAt:    lastTuesday.AddDate(0, 0, -i).Add(10 * time.Hour),
			EngagementRate: 0.03,
		}
	}
	return sortSamples(samples)
}

func TestOrchestrator_ZeroVarianceCohort(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := domain.NewMockEngagementRepository(ctrl)
	store := domain.NewMockCacheStore(ctrl)
	clock := &fakeClock{t: testNow}

	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCacheEntryNotFound)
	source.EXPECT().QuerySamples(gomock.Any(), gomock.Any()).Return(scenarioASamples(), nil)

	var stored *domain.CacheEntry
	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.CohortKey, e *domain.CacheEntry) error {
			stored = e
			return nil
		},
	)

	summary := newTestOrchestrator(source, store, nil, clock).Run(context.Background(), "run-a", testTrigger("user-1"))

	if summary.SuccessfulCalculations != 1 || summary.FailedCalculations != 0 {
		t.Fatalf("got successful=%d failed=%d errors=%v", summary.SuccessfulCalculations, summary.FailedCalculations, summary.Errors)
	}
	if stored == nil {
		t.Fatal("cache entry not stored")
	}
	if len(stored.Results) != 3 {
		t.Fatalf("Results: got %d, want 3", len(stored.Results))
	}
	if got := stored.ExpiresAt.Sub(stored.CalculatedAt); got != cache.BaseTTL {
		t.Errorf("TTL: got %v, want %v", got, cache.BaseTTL)
	}
	if stored.DataFreshness.TotalSamples != 25 {
		t.Errorf("TotalSamples: got %d, want 25", stored.DataFreshness.TotalSamples)
	}

	var found bool
	for _, r := range stored.Results {
		if r.DayOfWeek == int(time.Tuesday) && r.Time == "09:00" {
			found = true
			if r.Confidence != 1.0 {
				t.Errorf("Tuesday 09:00 confidence: got %v, want 1.0", r.Confidence)
			}
			if r.ExpectedEngagement != 0.05 {
				t.Errorf("Tuesday 09:00 engagement: got %v, want 0.05", r.ExpectedEngagement)
			}
			if r.Historical.SampleSize != 20 {
				t.Errorf("Tuesday 09:00 sample size: got %d, want 20", r.Historical.SampleSize)
			}
		}
	}
	if !found {
		t.Errorf("Tuesday 09:00 missing from %+v", stored.Results)
	}
}

func TestOrchestrator_InsufficientSamplesUseFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := domain.NewMockEngagementRepository(ctrl)
	store := domain.NewMockCacheStore(ctrl)
	clock := &fakeClock{t: testNow}

	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCacheEntryNotFound)
	source.EXPECT().QuerySamples(gomock.Any(), gomock.Any()).Return(fewSamples(5), nil)

	var stored *domain.CacheEntry
	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.CohortKey, e *domain.CacheEntry) error {
			stored = e
			return nil
		},
	)

	summary := newTestOrchestrator(source, store, nil, clock).Run(context.Background(), "run-b", testTrigger("user-1"))

	if summary.SuccessfulCalculations != 1 || len(summary.Errors) != 0 {
		t.Fatalf("got successful=%d errors=%v", summary.SuccessfulCalculations, summary.Errors)
	}
	if stored == nil {
		t.Fatal("fallback entry not stored")
	}

	want, err := fallback.Results(domain.ChannelInstagram, testNow)
	if err != nil {
		t.Fatalf("fallback.Results: %v", err)
	}
	if !reflect.DeepEqual(stored.Results, want) {
		t.Errorf("Results: got %+v, want %+v", stored.Results, want)
	}
	if got := stored.ExpiresAt.Sub(stored.CalculatedAt); got != 3*24*time.Hour {
		t.Errorf("TTL: got %v, want 72h", got)
	}
	if stored.DataFreshness.TotalSamples != 0 {
		t.Errorf("TotalSamples: got %d, want 0", stored.DataFreshness.TotalSamples)
	}
	if summary.Cohorts[0].Outcome != OutcomeFallback {
		t.Errorf("Outcome: got %v, want %v", summary.Cohorts[0].Outcome, OutcomeFallback)
	}
}

func TestOrchestrator_ForceRecalculationOverwritesValidEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := domain.NewMockEngagementRepository(ctrl)
	store := domain.NewMockCacheStore(ctrl)
	clock := &fakeClock{t: testNow}

	// No Get expectation: a forced run must not consult the cache.
	source.EXPECT().QuerySamples(gomock.Any(), gomock.Any()).Return(scenarioASamples(), nil)

	var stored *domain.CacheEntry
	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.CohortKey, e *domain.CacheEntry) error {
			stored = e
			return nil
		},
	)

	trigger := testTrigger("user-1")
	trigger.ForceRecalculation = true

	summary := newTestOrchestrator(source, store, nil, clock).Run(context.Background(), "run-c", trigger)

	if summary.CacheHits != 0 || summary.CacheMisses != 1 {
		t.Errorf("cache: got hits=%d misses=%d, want 0/1", summary.CacheHits, summary.CacheMisses)
	}
	if stored == nil {
		t.Fatal("entry not overwritten")
	}
	if !stored.CalculatedAt.Equal(testNow) {
		t.Errorf("CalculatedAt: got %v, want %v", stored.CalculatedAt, testNow)
	}
}

func TestOrchestrator_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := domain.NewMockEngagementRepository(ctrl)
	store := domain.NewMockCacheStore(ctrl)
	clock := &fakeClock{t: testNow}

	cached := &domain.CacheEntry{
		CohortKey:     domain.NewCohortKey("user-1", domain.ChannelInstagram, "blog_post"),
		Results:       []domain.OptimalTimeResult{{Time: "09:00", DayOfWeek: 2, ExpectedEngagement: 0.05, Confidence: 0.9}},
		CalculatedAt:  testNow.Add(-24 * time.Hour),
		ExpiresAt:     testNow.Add(13 * 24 * time.Hour),
		DataFreshness: domain.DataFreshness{TotalSamples: 80},
	}
	store.EXPECT().Get(gomock.Any(), cached.CohortKey).Return(cached, nil)

	summary := newTestOrchestrator(source, store, nil, clock).Run(context.Background(), "run-hit", testTrigger("user-1"))

	if summary.CacheHits != 1 || summary.CacheMisses != 0 {
		t.Errorf("cache: got hits=%d misses=%d, want 1/0", summary.CacheHits, summary.CacheMisses)
	}
	if summary.SuccessfulCalculations != 1 || summary.TotalCalculations != 1 {
		t.Errorf("got successful=%d total=%d, want 1/1", summary.SuccessfulCalculations, summary.TotalCalculations)
	}
	if summary.Cohorts[0].Outcome != OutcomeCached {
		t.Errorf("Outcome: got %v, want %v", summary.Cohorts[0].Outcome, OutcomeCached)
	}
}

func TestOrchestrator_BudgetStopsBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := domain.NewMockEngagementRepository(ctrl)
	store := domain.NewMockCacheStore(ctrl)
	clock := &fakeClock{t: testNow}

	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCacheEntryNotFound).Times(3)

	// Every query takes five minutes of a fifteen minute budget with a two
	// minute buffer: three cohorts start, the fourth does not.
	source.EXPECT().QuerySamples(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, q domain.SampleQuery) ([]domain.EngagementSample, error) {
			clock.Advance(5 * time.Minute)
			if q.UserID == "user-2" {
				return nil, errors.New("source timeout")
			}
			return fewSamples(5), nil
		},
	).Times(3)
	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	summary := newTestOrchestrator(source, store, nil, clock).Run(
		context.Background(), "run-d", testTrigger("user-1", "user-2", "user-3", "user-4"),
	)

	if !summary.BudgetExhausted {
		t.Error("BudgetExhausted: got false, want true")
	}
	if summary.SkippedCohorts != 1 {
		t.Errorf("SkippedCohorts: got %d, want 1", summary.SkippedCohorts)
	}
	if summary.TotalCalculations != 3 {
		t.Errorf("TotalCalculations: got %d, want 3", summary.TotalCalculations)
	}
	if summary.SuccessfulCalculations != 2 || summary.FailedCalculations != 1 {
		t.Errorf("got successful=%d failed=%d, want 2/1", summary.SuccessfulCalculations, summary.FailedCalculations)
	}
	if len(summary.Errors) != 1 || summary.Errors[0].UserID != "user-2" {
		t.Errorf("Errors: got %+v", summary.Errors)
	}
	for _, c := range summary.Cohorts {
		if c.CohortKey.UserID == "user-4" {
			t.Error("user-4 was processed after the budget ran out")
		}
	}
	for _, e := range summary.Errors {
		if e.UserID == "user-4" {
			t.Error("user-4 reported as an error")
		}
	}
}

func TestOrchestrator_IsolatesCohortFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := domain.NewMockEngagementRepository(ctrl)
	store := domain.NewMockCacheStore(ctrl)
	clock := &fakeClock{t: testNow}

	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCacheEntryNotFound).Times(3)
	source.EXPECT().QuerySamples(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, q domain.SampleQuery) ([]domain.EngagementSample, error) {
			if q.UserID == "user-panic" {
				panic("decoder bug")
			}
			return scenarioASamples(), nil
		},
	).Times(3)
	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, key domain.CohortKey, _ *domain.CacheEntry) error {
			if key.UserID == "user-store" {
				return errors.New("redis: connection reset")
			}
			return nil
		},
	).Times(2)

	summary := newTestOrchestrator(source, store, nil, clock).Run(
		context.Background(), "run-iso", testTrigger("user-store", "user-panic", "user-ok"),
	)

	if summary.SuccessfulCalculations != 1 || summary.FailedCalculations != 2 {
		t.Fatalf("got successful=%d failed=%d, want 1/2", summary.SuccessfulCalculations, summary.FailedCalculations)
	}

	byUser := make(map[string]ProcessingError)
	for _, e := range summary.Errors {
		byUser[e.UserID] = e
	}
	if e, ok := byUser["user-store"]; !ok || e.SampleSize != 25 {
		t.Errorf("user-store error: got %+v, want sample size 25", e)
	}
	if e, ok := byUser["user-panic"]; !ok || e.Message == "" {
		t.Errorf("user-panic error: got %+v", e)
	}
}

func TestOrchestrator_DryRunSkipsWrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := domain.NewMockEngagementRepository(ctrl)
	store := domain.NewMockCacheStore(ctrl)
	recorder := newMockRecorder()
	clock := &fakeClock{t: testNow}

	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCacheEntryNotFound).Times(2)
	source.EXPECT().QuerySamples(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, q domain.SampleQuery) ([]domain.EngagementSample, error) {
			if q.UserID == "user-sparse" {
				return fewSamples(4), nil
			}
			return scenarioASamples(), nil
		},
	).Times(2)
	// No Put expectation: a dry run never writes.

	trigger := testTrigger("user-rich", "user-sparse")
	trigger.DryRun = true

	summary := newTestOrchestrator(source, store, recorder, clock).Run(context.Background(), "run-dry", trigger)

	if !summary.DryRun {
		t.Error("DryRun: got false, want true")
	}
	if summary.SuccessfulCalculations != 2 {
		t.Fatalf("SuccessfulCalculations: got %d, want 2 (errors %v)", summary.SuccessfulCalculations, summary.Errors)
	}
	for _, c := range summary.Cohorts {
		if len(c.Results) != 3 {
			t.Errorf("%s: got %d results, want 3", c.CohortKey, len(c.Results))
		}
	}
	if len(recorder.cohortRecords) != 0 {
		t.Errorf("cohort records: got %d, want 0", len(recorder.cohortRecords))
	}
	if len(recorder.summaries) != 1 || !recorder.summaries[0].DryRun {
		t.Errorf("summaries: got %+v", recorder.summaries)
	}
}

func TestOrchestrator_Deterministic(t *testing.T) {
	run := func() *Summary {
		ctrl := gomock.NewController(t)
		source := domain.NewMockEngagementRepository(ctrl)
		store := domain.NewMockCacheStore(ctrl)
		store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		source.EXPECT().QuerySamples(gomock.Any(), gomock.Any()).Return(scenarioASamples(), nil)

		trigger := testTrigger("user-1")
		trigger.ForceRecalculation = true
		return newTestOrchestrator(source, store, nil, &fakeClock{t: testNow}).Run(context.Background(), "run", trigger)
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first.Cohorts, second.Cohorts) {
		t.Errorf("results differ between runs:\n%+v\n%+v", first.Cohorts, second.Cohorts)
	}
}

func TestOrchestrator_DiscoversUsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := domain.NewMockEngagementRepository(ctrl)
	store := domain.NewMockCacheStore(ctrl)
	clock := &fakeClock{t: testNow}

	trigger := testTrigger()
	trigger.MaxUsers = 2

	source.EXPECT().ListUserIDs(gomock.Any(), 2).Return([]string{"a", "b"}, nil)
	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCacheEntryNotFound).Times(2)
	source.EXPECT().QuerySamples(gomock.Any(), gomock.Any()).Return(fewSamples(1), nil).Times(2)
	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	summary := newTestOrchestrator(source, store, nil, clock).Run(context.Background(), "run-discover", trigger)

	if summary.TotalCalculations != 2 {
		t.Errorf("TotalCalculations: got %d, want 2", summary.TotalCalculations)
	}
}

func TestOrchestrator_TruncatesUserIDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := domain.NewMockEngagementRepository(ctrl)
	store := domain.NewMockCacheStore(ctrl)
	clock := &fakeClock{t: testNow}

	trigger := testTrigger("a", "b", "c")
	trigger.MaxUsers = 1

	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCacheEntryNotFound)
	source.EXPECT().QuerySamples(gomock.Any(), gomock.Any()).Return(nil, nil)
	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	summary := newTestOrchestrator(source, store, nil, clock).Run(context.Background(), "run-cap", trigger)

	if summary.TotalCalculations != 1 || summary.Cohorts[0].CohortKey.UserID != "a" {
		t.Errorf("got %+v", summary.Cohorts)
	}
}

func TestOrchestrator_UserListingFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := domain.NewMockEngagementRepository(ctrl)
	store := domain.NewMockCacheStore(ctrl)
	clock := &fakeClock{t: testNow}

	source.EXPECT().ListUserIDs(gomock.Any(), gomock.Any()).Return(nil, errors.New("permission denied"))

	summary := newTestOrchestrator(source, store, nil, clock).Run(context.Background(), "run-fatal", testTrigger())

	if !summary.IsFatal() {
		t.Fatal("expected fatal summary")
	}
	if summary.TotalCalculations != 0 {
		t.Errorf("TotalCalculations: got %d, want 0", summary.TotalCalculations)
	}
}

func TestOrchestrator_RunPayloadRejectsMalformedTrigger(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := domain.NewMockEngagementRepository(ctrl)
	store := domain.NewMockCacheStore(ctrl)
	clock := &fakeClock{t: testNow}

	summary := newTestOrchestrator(source, store, nil, clock).RunPayload(
		context.Background(), "run-bad", []byte(`{"dryRun": true, "retries": 3}`),
	)

	if !summary.IsFatal() {
		t.Fatal("expected fatal summary")
	}
	if summary.TotalCalculations != 0 || len(summary.Errors) != 0 {
		t.Errorf("got %+v", summary)
	}
}

func TestOrchestrator_DataFreshnessStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := domain.NewMockEngagementRepository(ctrl)
	store := domain.NewMockCacheStore(ctrl)
	recorder := newMockRecorder()
	clock := &fakeClock{t: testNow}

	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCacheEntryNotFound).Times(2)
	source.EXPECT().QuerySamples(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, q domain.SampleQuery) ([]domain.EngagementSample, error) {
			if q.UserID == "empty" {
				return nil, nil
			}
			return scenarioASamples(), nil
		},
	).Times(2)
	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	summary := newTestOrchestrator(source, store, recorder, clock).Run(context.Background(), "run-f", testTrigger("rich", "empty"))

	stats := summary.DataFreshnessStats
	if stats.TotalAnalyticsRecords != 25 {
		t.Errorf("TotalAnalyticsRecords: got %d, want 25", stats.TotalAnalyticsRecords)
	}
	if stats.AvgSampleSize != 12.5 {
		t.Errorf("AvgSampleSize: got %v, want 12.5", stats.AvgSampleSize)
	}
	// Newest sample is Wednesday 2026-03-04 15:00, 21 hours before testNow.
	if want := 21.0 / 24.0; stats.AvgDataAge != want {
		t.Errorf("AvgDataAge: got %v, want %v", stats.AvgDataAge, want)
	}

	// One computed cohort (three slots) and one fallback cohort (three slots).
	if len(recorder.cohortRecords) != 6 {
		t.Errorf("cohort records: got %d, want 6", len(recorder.cohortRecords))
	}
}

func TestOrchestrator_InvalidSampleRateFailsCohort(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := domain.NewMockEngagementRepository(ctrl)
	store := domain.NewMockCacheStore(ctrl)
	clock := &fakeClock{t: testNow}

	samples := scenarioASamples()
	samples[3].EngagementRate = -0.5
	samples[3].SourceID = "negative"

	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCacheEntryNotFound)
	source.EXPECT().QuerySamples(gomock.Any(), gomock.Any()).Return(samples, nil)
	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	summary := newTestOrchestrator(source, store, nil, clock).Run(
		context.Background(), "run-invalid", testTrigger("user-1"),
	)

	if summary.FailedCalculations != 1 || summary.SuccessfulCalculations != 0 {
		t.Fatalf("got successful=%d failed=%d, want 0/1", summary.SuccessfulCalculations, summary.FailedCalculations)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("errors: got %d, want 1", len(summary.Errors))
	}
	if got := summary.Errors[0].SampleSize; got != len(samples) {
		t.Errorf("SampleSize: got %d, want %d", got, len(samples))
	}
}

package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sngor/bayon-coagent-sub013/internal/config"
	"github.com/sngor/bayon-coagent-sub013/internal/domain"
	"github.com/sngor/bayon-coagent-sub013/internal/observability/logging"
	"github.com/sngor/bayon-coagent-sub013/internal/observability/metrics"
	"github.com/sngor/bayon-coagent-sub013/internal/observability/tracing"
	"github.com/sngor/bayon-coagent-sub013/internal/service/cache"
)

const hoursPerDay = 24.0

type Orchestrator struct {
	source     domain.EngagementRepository
	cache      *cache.Manager
	calculator *Calculator
	recorder   domain.ResultRecorder
	cfg        *config.OptimizerConfig
	metrics    *metrics.OptimizerMetrics
	logger     *slog.Logger
	now        func() time.Time
}

func NewOrchestrator(
	source domain.EngagementRepository,
	cacheManager *cache.Manager,
	recorder domain.ResultRecorder,
	cfg *config.OptimizerConfig,
	optimizerMetrics *metrics.OptimizerMetrics,
	logger *slog.Logger,
	now func() time.Time,
) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultOptimizerConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		source:     source,
		cache:      cacheManager,
		calculator: NewCalculator(),
		recorder:   recorder,
		cfg:        cfg,
		metrics:    optimizerMetrics,
		logger:     logger,
		now:        now,
	}
}

// RunPayload parses a trigger payload and runs the batch. A payload that does
// not parse yields a fatal summary with zero counts.
func (o *Orchestrator) RunPayload(ctx context.Context, runID string, payload []byte) *Summary {
	trigger, err := config.ParseTrigger(payload)
	if err != nil {
		o.logger.WarnContext(ctx, "rejected trigger configuration",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		return FatalSummary(runID, err)
	}
	return o.Run(ctx, runID, trigger)
}

// Run processes every cohort named by trigger, one at a time, until the cohorts
// run out or the time budget is exhausted.
func (o *Orchestrator) Run(ctx context.Context, runID string, trigger *config.Trigger) *Summary {
	start := o.now()
	deadline := start.Add(o.cfg.TimeBudget)
	summary := newSummary(runID, trigger.DryRun)

	acc := &freshnessAccumulator{}
	defer func() {
		finishedAt := o.now()
		elapsed := finishedAt.Sub(start)
		summary.ExecutionTimeMs = elapsed.Milliseconds()
		summary.DataFreshnessStats = acc.stats()
		o.finish(ctx, summary, finishedAt, elapsed)
	}()

	cohorts, err := o.cohorts(ctx, trigger)
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to resolve cohorts",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		summary.Fatal = &FatalError{Message: err.Error()}
		return summary
	}

	ctx, span := tracing.StartBatchSpan(ctx, runID, len(cohorts), trigger.DryRun, trigger.ForceRecalculation)
	defer func() {
		tracing.RecordBatchResult(span, summary.SuccessfulCalculations, summary.FailedCalculations,
			summary.CacheHits, summary.SkippedCohorts, summary.BudgetExhausted, nil)
		span.End()
	}()

	o.logger.InfoContext(ctx, "batch started",
		slog.String("run_id", runID),
		slog.Int("cohort_count", len(cohorts)),
		slog.Bool("dry_run", trigger.DryRun),
		slog.Bool("force_recalculation", trigger.ForceRecalculation),
		slog.Time("deadline", deadline),
	)

	for i, key := range cohorts {
		if !o.now().Add(o.cfg.BudgetBuffer).Before(deadline) {
			summary.BudgetExhausted = true
			summary.SkippedCohorts = len(cohorts) - i
			o.logger.WarnContext(ctx, "time budget exhausted, deferring remaining cohorts",
				slog.String("run_id", runID),
				slog.Int("processed", i),
				slog.Int("skipped", summary.SkippedCohorts),
			)
			break
		}

		logger := logging.CohortLogger(o.logger, runID, key)
		result := o.safeProcessCohort(ctx, logger, runID, key, trigger)
		o.apply(summary, acc, key, result)
	}

	return summary
}

func (o *Orchestrator) cohorts(ctx context.Context, trigger *config.Trigger) ([]domain.CohortKey, error) {
	userIDs := trigger.UserIDs
	if len(userIDs) == 0 {
		listed, err := o.source.ListUserIDs(ctx, trigger.MaxUsers)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		userIDs = listed
	}
	if len(userIDs) > trigger.MaxUsers {
		userIDs = userIDs[:trigger.MaxUsers]
	}

	cohorts := make([]domain.CohortKey, 0, len(userIDs)*len(trigger.Channels)*len(trigger.ContentTypes))
	for _, userID := range userIDs {
		for _, channel := range trigger.Channels {
			for _, contentType := range trigger.ContentTypes {
				cohorts = append(cohorts, domain.NewCohortKey(userID, channel, contentType))
			}
		}
	}
	return cohorts, nil
}

type cohortResult struct {
	outcome    Outcome
	cacheHit   bool
	queried    bool
	sampleSize int

	// newest is the latest sample publish time; zero when no samples were read.
	newest       time.Time
	calculatedAt time.Time
	results      []domain.OptimalTimeResult
	err          error
}

// safeProcessCohort converts a panic inside one cohort into a cohort error.
func (o *Orchestrator) safeProcessCohort(ctx context.Context, logger *slog.Logger, runID string, key domain.CohortKey, trigger *config.Trigger) (result cohortResult) {
	defer func() {
		if r := recover(); r != nil {
			result = cohortResult{
				outcome: OutcomeFailed,
				err:     fmt.Errorf("panic: %v", r),
			}
			logger.ErrorContext(ctx, "cohort calculation panicked",
				slog.String("error", result.err.Error()),
			)
		}
	}()
	return o.processCohort(ctx, logger, runID, key, trigger)
}

func (o *Orchestrator) processCohort(ctx context.Context, logger *slog.Logger, runID string, key domain.CohortKey, trigger *config.Trigger) cohortResult {
	started := o.now()
	ctx, span := tracing.StartCohortSpan(ctx, key.UserID, key.Channel.String(), key.ContentType)
	defer span.End()

	result := o.calculateCohort(ctx, logger, key, trigger, started)

	tracing.RecordCohortResult(span, result.outcome.String(), result.sampleSize, len(result.results), result.err)
	if o.metrics != nil {
		o.metrics.RecordCohortProcessed(ctx, key.Channel.String(), result.outcome.String(), o.now().Sub(started))
	}

	if result.err != nil {
		logger.WarnContext(ctx, "cohort calculation failed",
			slog.Int("sample_size", result.sampleSize),
			slog.String("error", result.err.Error()),
		)
		return result
	}

	logger.DebugContext(ctx, "cohort processed",
		slog.String("outcome", result.outcome.String()),
		slog.Int("sample_size", result.sampleSize),
		slog.Int("result_count", len(result.results)),
	)

	if result.outcome != OutcomeCached && !trigger.DryRun {
		o.recordResults(ctx, logger, runID, key, result)
	}
	return result
}

func (o *Orchestrator) calculateCohort(ctx context.Context, logger *slog.Logger, key domain.CohortKey, trigger *config.Trigger, calculatedAt time.Time) cohortResult {
	if !trigger.ForceRecalculation {
		entry, valid, err := o.cache.Lookup(ctx, key)
		if err != nil {
			o.recordLookup(ctx, "error")
			return cohortResult{outcome: OutcomeFailed, err: err}
		}
		if valid {
			o.recordLookup(ctx, "hit")
			return cohortResult{
				outcome:      OutcomeCached,
				cacheHit:     true,
				calculatedAt: entry.CalculatedAt,
				results:      entry.Results,
			}
		}
		o.recordLookup(ctx, "miss")
	}

	samples, err := o.source.QuerySamples(ctx, domain.SampleQuery{
		UserID:      key.UserID,
		Channel:     key.Channel,
		ContentType: key.ContentType,
		Since:       calculatedAt.Add(-o.cfg.Lookback()),
		Limit:       o.cfg.MaxSamples,
	})
	if err != nil {
		return cohortResult{outcome: OutcomeFailed, err: fmt.Errorf("query samples: %w", err)}
	}

	for _, s := range samples {
		if err := s.Validate(); err != nil {
			return cohortResult{
				outcome:    OutcomeFailed,
				sampleSize: len(samples),
				err:        fmt.Errorf("sample %q: %w", s.SourceID, err),
			}
		}
	}

	freshness := Freshness(samples)
	result := cohortResult{
		queried:      true,
		sampleSize:   len(samples),
		newest:       freshness.LastSourceUpdate,
		calculatedAt: calculatedAt,
	}

	var entry *domain.CacheEntry
	if len(samples) < trigger.MinSampleSize {
		logger.DebugContext(ctx, "insufficient samples, using fallback catalog",
			slog.Int("sample_size", len(samples)),
			slog.Int("min_sample_size", trigger.MinSampleSize),
		)
		result.outcome = OutcomeFallback
		if trigger.DryRun {
			entry, err = cache.FallbackEntry(key, freshness, calculatedAt)
		} else {
			entry, err = o.cache.PutFallback(ctx, key, freshness, calculatedAt)
		}
	} else {
		var calc *Calculation
		calc, err = o.calculator.Calculate(key.Channel, samples, calculatedAt)
		if err != nil {
			result.outcome = OutcomeFailed
			result.err = err
			return result
		}
		if o.metrics != nil {
			o.metrics.RecordSignificantCells(ctx, key.Channel.String(), calc.SignificantCells)
		}
		logger.DebugContext(ctx, "cells analyzed",
			slog.Int("retained_cells", len(calc.Cells)),
			slog.Int("dropped_cells", calc.DroppedCells),
			slog.Int("significant_cells", calc.SignificantCells),
		)

		result.outcome = OutcomeComputed
		if trigger.DryRun {
			entry = cache.NewEntry(key, calc.Results, freshness, calculatedAt)
		} else {
			entry, err = o.cache.Put(ctx, key, calc.Results, freshness, calculatedAt)
		}
	}

	if err != nil {
		result.outcome = OutcomeFailed
		result.err = err
		return result
	}

	result.results = entry.Results
	return result
}

func (o *Orchestrator) apply(summary *Summary, acc *freshnessAccumulator, key domain.CohortKey, result cohortResult) {
	summary.TotalCalculations++
	if result.cacheHit {
		summary.CacheHits++
	} else {
		summary.CacheMisses++
	}

	if result.err != nil {
		summary.FailedCalculations++
		summary.Errors = append(summary.Errors, ProcessingError{
			UserID:      key.UserID,
			Channel:     key.Channel,
			ContentType: key.ContentType,
			Message:     result.err.Error(),
			SampleSize:  result.sampleSize,
		})
	} else {
		summary.SuccessfulCalculations++
	}

	if result.queried {
		acc.add(result.sampleSize, result.newest, result.calculatedAt)
	}

	summary.Cohorts = append(summary.Cohorts, CohortReport{
		CohortKey:  key,
		Outcome:    result.outcome,
		SampleSize: result.sampleSize,
		Results:    result.results,
	})
}

func (o *Orchestrator) recordLookup(ctx context.Context, result string) {
	if o.metrics != nil {
		o.metrics.RecordCacheLookup(ctx, result)
	}
}

func (o *Orchestrator) recordResults(ctx context.Context, logger *slog.Logger, runID string, key domain.CohortKey, result cohortResult) {
	if o.recorder == nil || len(result.results) == 0 {
		return
	}

	records := make([]domain.CohortResultRecord, 0, len(result.results))
	for i, r := range result.results {
		source := OutcomeComputed.String()
		if r.Historical.SampleSize == 0 {
			source = OutcomeFallback.String()
		}
		records = append(records, domain.CohortResultRecord{
			RunID:              runID,
			CohortKey:          key,
			Source:             source,
			Rank:               i + 1,
			DayOfWeek:          r.DayOfWeek,
			Time:               r.Time,
			ExpectedEngagement: r.ExpectedEngagement,
			Confidence:         r.Confidence,
			SampleSize:         r.Historical.SampleSize,
			CalculatedAt:       result.calculatedAt,
		})
	}

	if err := o.recorder.RecordCohortResults(ctx, records); err != nil {
		logger.WarnContext(ctx, "failed to record cohort results",
			slog.String("error", err.Error()),
		)
	}
}

func (o *Orchestrator) finish(ctx context.Context, summary *Summary, finishedAt time.Time, elapsed time.Duration) {
	if o.metrics != nil {
		o.metrics.RecordBatchDuration(ctx, elapsed, summary.BudgetExhausted)
		o.metrics.RecordCohortsSkipped(ctx, summary.SkippedCohorts)
	}

	if o.recorder != nil && !summary.IsFatal() {
		if err := o.recorder.RecordBatchSummary(ctx, summary.record(finishedAt, elapsed)); err != nil {
			o.logger.WarnContext(ctx, "failed to record batch summary",
				slog.String("run_id", summary.RunID),
				slog.String("error", err.Error()),
			)
		}
		if err := o.recorder.Flush(ctx); err != nil {
			o.logger.WarnContext(ctx, "failed to flush result recorder",
				slog.String("run_id", summary.RunID),
				slog.String("error", err.Error()),
			)
		}
	}

	attrs := []any{
		slog.String("run_id", summary.RunID),
		slog.Int("total_calculations", summary.TotalCalculations),
		slog.Int("successful_calculations", summary.SuccessfulCalculations),
		slog.Int("failed_calculations", summary.FailedCalculations),
		slog.Int("cache_hits", summary.CacheHits),
		slog.Int("cache_misses", summary.CacheMisses),
		slog.Int("skipped_cohorts", summary.SkippedCohorts),
		slog.Bool("budget_exhausted", summary.BudgetExhausted),
		slog.Int64("execution_time_ms", summary.ExecutionTimeMs),
	}
	if summary.IsFatal() {
		o.logger.ErrorContext(ctx, "batch aborted", append(attrs, slog.String("error", summary.Fatal.Message))...)
		return
	}
	o.logger.InfoContext(ctx, "batch completed", attrs...)
}

// freshnessAccumulator averages sample volume and data age over the cohorts
// that read samples.
type freshnessAccumulator struct {
	cohorts     int
	records     int
	agedCohorts int
	ageDays     float64
}

func (a *freshnessAccumulator) add(sampleSize int, newest, calculatedAt time.Time) {
	a.cohorts++
	a.records += sampleSize
	if !newest.IsZero() {
		a.agedCohorts++
		a.ageDays += calculatedAt.Sub(newest).Hours() / hoursPerDay
	}
}

func (a *freshnessAccumulator) stats() DataFreshnessStats {
	stats := DataFreshnessStats{TotalAnalyticsRecords: a.records}
	if a.cohorts > 0 {
		stats.AvgSampleSize = float64(a.records) / float64(a.cohorts)
	}
	if a.agedCohorts > 0 {
		stats.AvgDataAge = a.ageDays / float64(a.agedCohorts)
	}
	return stats
}

package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	optimizerMeterName = "optimizer.service"
)

type OptimizerMetrics struct {
	cohortsProcessed metric.Int64Counter
	cacheLookups     metric.Int64Counter
	significantCells metric.Int64Counter
	cohortDuration   metric.Float64Histogram
	batchDuration    metric.Float64Histogram
	cohortsSkipped   metric.Int64Counter
}

func NewOptimizerMetrics() (*OptimizerMetrics, error) {
	meter := otel.Meter(optimizerMeterName)

	cohortsProcessed, err := meter.Int64Counter(
		"optimizer_cohorts_total",
		metric.WithDescription("Total number of cohorts processed"),
		metric.WithUnit("{cohort}"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"optimizer_cache_lookups_total",
		metric.WithDescription("Cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	significantCells, err := meter.Int64Counter(
		"optimizer_significant_cells_total",
		metric.WithDescription("Time slot cells that passed the significance check"),
		metric.WithUnit("{cell}"),
	)
	if err != nil {
		return nil, err
	}

	cohortDuration, err := meter.Float64Histogram(
		"optimizer_cohort_duration_seconds",
		metric.WithDescription("Time spent on a single cohort"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
		),
	)
	if err != nil {
		return nil, err
	}

	batchDuration, err := meter.Float64Histogram(
		"optimizer_batch_duration_seconds",
		metric.WithDescription("Batch run duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			1, 5, 15, 30, 60, 120, 300, 600, 900,
		),
	)
	if err != nil {
		return nil, err
	}

	cohortsSkipped, err := meter.Int64Counter(
		"optimizer_cohorts_skipped_total",
		metric.WithDescription("Cohorts left for the next run after the time budget ran out"),
		metric.WithUnit("{cohort}"),
	)
	if err != nil {
		return nil, err
	}

	return &OptimizerMetrics{
		cohortsProcessed: cohortsProcessed,
		cacheLookups:     cacheLookups,
		significantCells: significantCells,
		cohortDuration:   cohortDuration,
		batchDuration:    batchDuration,
		cohortsSkipped:   cohortsSkipped,
	}, nil
}

// RecordCohortProcessed counts a cohort by outcome: computed, fallback, cached or failed.
func (m *OptimizerMetrics) RecordCohortProcessed(ctx context.Context, channel, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("outcome", outcome),
	)
	m.cohortsProcessed.Add(ctx, 1, attrs)
	m.cohortDuration.Record(ctx, duration.Seconds(), attrs)
}

func (m *OptimizerMetrics) RecordCacheLookup(ctx context.Context, result string) {
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}

func (m *OptimizerMetrics) RecordSignificantCells(ctx context.Context, channel string, count int) {
	if count == 0 {
		return
	}
	m.significantCells.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("channel", channel),
	))
}

func (m *OptimizerMetrics) RecordBatchDuration(ctx context.Context, duration time.Duration, budgetExhausted bool) {
	m.batchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.Bool("budget_exhausted", budgetExhausted),
	))
}

func (m *OptimizerMetrics) RecordCohortsSkipped(ctx context.Context, count int) {
	if count == 0 {
		return
	}
	m.cohortsSkipped.Add(ctx, int64(count))
}

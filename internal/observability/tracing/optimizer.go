package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const optimizerTracerName = "github.com/sngor/bayon-coagent-sub013/internal/service/batch"

func OptimizerTracer() trace.Tracer {
	return otel.Tracer(optimizerTracerName)
}

func StartBatchSpan(ctx context.Context, runID string, cohorts int, dryRun, force bool) (context.Context, trace.Span) {
	return OptimizerTracer().Start(ctx, "optimizer.batch",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("batch.cohorts", cohorts),
			attribute.Bool("batch.dry_run", dryRun),
			attribute.Bool("batch.force_recalculation", force),
		),
	)
}

func StartCohortSpan(ctx context.Context, userID, channel, contentType string) (context.Context, trace.Span) {
	return OptimizerTracer().Start(ctx, "optimizer.cohort",
		trace.WithAttributes(
			attribute.String("user_id", userID),
			attribute.String("channel", channel),
			attribute.String("content_type", contentType),
		),
	)
}

func StartSourceQuerySpan(ctx context.Context, source, operation string) (context.Context, trace.Span) {
	return OptimizerTracer().Start(ctx, "optimizer.source."+operation,
		trace.WithAttributes(
			attribute.String("source", source),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordBatchResult(span trace.Span, successful, failed, cacheHits, skipped int, budgetExhausted bool, err error) {
	span.SetAttributes(
		attribute.Int("batch.successful_count", successful),
		attribute.Int("batch.failed_count", failed),
		attribute.Int("batch.cache_hits", cacheHits),
		attribute.Int("batch.skipped_count", skipped),
		attribute.Bool("batch.budget_exhausted", budgetExhausted),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

func RecordCohortResult(span trace.Span, outcome string, sampleSize, resultCount int, err error) {
	span.SetAttributes(
		attribute.String("cohort.outcome", outcome),
		attribute.Int("cohort.sample_size", sampleSize),
		attribute.Int("cohort.result_count", resultCount),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

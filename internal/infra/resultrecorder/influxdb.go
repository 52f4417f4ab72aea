//go:build !gcloud

package resultrecorder

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

const (
	cohortResultMeasurement = "cohort_result"
	batchSummaryMeasurement = "batch_summary"
)

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.ResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "optimizer result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, optimizer result recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket)

	slog.InfoContext(ctx, "optimizer result recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
		bucket:   cfg.InfluxDBBucket,
		org:      cfg.InfluxDBOrg,
	}, nil
}

func (r *influxDBRecorder) RecordCohortResults(ctx context.Context, records []domain.CohortResultRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*write.Point, 0, len(records))
	for _, record := range records {
		points = append(points, cohortResultPoint(record))
	}

	if err := r.writeAPI.WritePoint(ctx, points...); err != nil {
		slog.WarnContext(ctx, "failed to write cohort results to InfluxDB",
			slog.String("error", err.Error()),
			slog.String("cohort", records[0].CohortKey.String()),
			slog.Int("record_count", len(records)),
		)
	}

	return nil
}

func (r *influxDBRecorder) RecordBatchSummary(ctx context.Context, record domain.BatchSummaryRecord) error {
	point := influxdb2.NewPoint(
		batchSummaryMeasurement,
		map[string]string{
			"run_id":           runIDOrDefault(record.RunID),
			"dry_run":          strconv.FormatBool(record.DryRun),
			"budget_exhausted": strconv.FormatBool(record.BudgetExhausted),
		},
		map[string]any{
			"total_calculations":      record.TotalCalculations,
			"successful_calculations": record.SuccessfulCalculations,
			"failed_calculations":     record.FailedCalculations,
			"cache_hits":              record.CacheHits,
			"cache_misses":            record.CacheMisses,
			"skipped_cohorts":         record.SkippedCohorts,
			"execution_time_ms":       record.ExecutionTime.Milliseconds(),
			"avg_sample_size":         record.AvgSampleSize,
			"avg_data_age_days":       record.AvgDataAgeDays,
			"total_analytics_records": record.TotalAnalyticsRecords,
		},
		record.FinishedAt,
	)

	if err := r.writeAPI.WritePoint(ctx, point); err != nil {
		slog.WarnContext(ctx, "failed to write batch summary to InfluxDB",
			slog.String("error", err.Error()),
			slog.String("run_id", record.RunID),
		)
	}

	return nil
}

func cohortResultPoint(record domain.CohortResultRecord) *write.Point {
	// Rank in the nanosecond field keeps the three points of one cohort distinct.
	pointTime := record.CalculatedAt.Add(time.Duration(record.Rank))

	return influxdb2.NewPoint(
		cohortResultMeasurement,
		map[string]string{
			"run_id":       runIDOrDefault(record.RunID),
			"user_id":      record.CohortKey.UserID,
			"channel":      record.CohortKey.Channel.String(),
			"content_type": record.CohortKey.ContentType,
			"source":       record.Source,
			"rank":         strconv.Itoa(record.Rank),
		},
		map[string]any{
			"day_of_week":         record.DayOfWeek,
			"time":                record.Time,
			"expected_engagement": record.ExpectedEngagement,
			"confidence":          record.Confidence,
			"sample_size":         record.SampleSize,
		},
		pointTime,
	)
}

func runIDOrDefault(runID string) string {
	if runID == "" {
		return "default"
	}
	return runID
}

func (r *influxDBRecorder) Flush(ctx context.Context) error {
	return nil
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}

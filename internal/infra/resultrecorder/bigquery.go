//go:build gcloud

package resultrecorder

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

type cohortResultRow struct {
	RecordedAt         time.Time `bigquery:"recorded_at"`
	RunID              string    `bigquery:"run_id"`
	UserID             string    `bigquery:"user_id"`
	Channel            string    `bigquery:"channel"`
	ContentType        string    `bigquery:"content_type"`
	Source             string    `bigquery:"source"`
	Rank               int64     `bigquery:"rank"`
	DayOfWeek          int64     `bigquery:"day_of_week"`
	Time               string    `bigquery:"time"`
	ExpectedEngagement float64   `bigquery:"expected_engagement"`
	Confidence         float64   `bigquery:"confidence"`
	SampleSize         int64     `bigquery:"sample_size"`
	CalculatedAt       time.Time `bigquery:"calculated_at"`
}

type batchSummaryRow struct {
	RunID                  string    `bigquery:"run_id"`
	FinishedAt             time.Time `bigquery:"finished_at"`
	TotalCalculations      int64     `bigquery:"total_calculations"`
	SuccessfulCalculations int64     `bigquery:"successful_calculations"`
	FailedCalculations     int64     `bigquery:"failed_calculations"`
	CacheHits              int64     `bigquery:"cache_hits"`
	CacheMisses            int64     `bigquery:"cache_misses"`
	SkippedCohorts         int64     `bigquery:"skipped_cohorts"`
	BudgetExhausted        bool      `bigquery:"budget_exhausted"`
	DryRun                 bool      `bigquery:"dry_run"`
	ExecutionTimeMs        int64     `bigquery:"execution_time_ms"`
	AvgSampleSize          float64   `bigquery:"avg_sample_size"`
	AvgDataAgeDays         float64   `bigquery:"avg_data_age_days"`
	TotalAnalyticsRecords  int64     `bigquery:"total_analytics_records"`
}

type bigQueryRecorder struct {
	client          *bigquery.Client
	resultsInserter *bigquery.Inserter
	summaryInserter *bigquery.Inserter
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.ResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "optimizer result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, optimizer result recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, optimizer result recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	dataset := client.Dataset(cfg.BigQueryDataset)

	slog.InfoContext(ctx, "optimizer result recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("results_table", cfg.BigQueryResultsTable),
		slog.String("summary_table", cfg.BigQuerySummaryTable),
	)

	return &bigQueryRecorder{
		client:          client,
		resultsInserter: dataset.Table(cfg.BigQueryResultsTable).Inserter(),
		summaryInserter: dataset.Table(cfg.BigQuerySummaryTable).Inserter(),
	}, nil
}

func (r *bigQueryRecorder) RecordCohortResults(ctx context.Context, records []domain.CohortResultRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]*cohortResultRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, &cohortResultRow{
			RecordedAt:         now,
			RunID:              record.RunID,
			UserID:             record.CohortKey.UserID,
			Channel:            record.CohortKey.Channel.String(),
			ContentType:        record.CohortKey.ContentType,
			Source:             record.Source,
			Rank:               int64(record.Rank),
			DayOfWeek:          int64(record.DayOfWeek),
			Time:               record.Time,
			ExpectedEngagement: record.ExpectedEngagement,
			Confidence:         record.Confidence,
			SampleSize:         int64(record.SampleSize),
			CalculatedAt:       record.CalculatedAt,
		})
	}

	if err := r.resultsInserter.Put(ctx, rows); err != nil {
		slog.WarnContext(ctx, "failed to insert cohort results to BigQuery",
			slog.String("error", err.Error()),
			slog.Int("record_count", len(records)),
		)
	}

	return nil
}

func (r *bigQueryRecorder) RecordBatchSummary(ctx context.Context, record domain.BatchSummaryRecord) error {
	row := &batchSummaryRow{
		RunID:                  record.RunID,
		FinishedAt:             record.FinishedAt,
		TotalCalculations:      int64(record.TotalCalculations),
		SuccessfulCalculations: int64(record.SuccessfulCalculations),
		FailedCalculations:     int64(record.FailedCalculations),
		CacheHits:              int64(record.CacheHits),
		CacheMisses:            int64(record.CacheMisses),
		SkippedCohorts:         int64(record.SkippedCohorts),
		BudgetExhausted:        record.BudgetExhausted,
		DryRun:                 record.DryRun,
		ExecutionTimeMs:        record.ExecutionTime.Milliseconds(),
		AvgSampleSize:          record.AvgSampleSize,
		AvgDataAgeDays:         record.AvgDataAgeDays,
		TotalAnalyticsRecords:  int64(record.TotalAnalyticsRecords),
	}

	if err := r.summaryInserter.Put(ctx, row); err != nil {
		slog.WarnContext(ctx, "failed to insert batch summary to BigQuery",
			slog.String("error", err.Error()),
			slog.String("run_id", record.RunID),
		)
	}

	return nil
}

func (r *bigQueryRecorder) Flush(ctx context.Context) error {
	return nil
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

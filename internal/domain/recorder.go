package domain

import (
	"context"
	"time"
)

// CohortResultRecord is one recommended slot as written to the analytics sink.
type CohortResultRecord struct {
	RunID              string
	CohortKey          CohortKey
	Source             string
	Rank               int
	DayOfWeek          int
	Time               string
	ExpectedEngagement float64
	Confidence         float64
	SampleSize         int
	CalculatedAt       time.Time
}

// BatchSummaryRecord is the aggregate of one batch run.
type BatchSummaryRecord struct {
	RunID                  string
	TotalCalculations      int
	SuccessfulCalculations int
	FailedCalculations     int
	CacheHits              int
	CacheMisses            int
	SkippedCohorts         int
	BudgetExhausted        bool
	DryRun                 bool
	ExecutionTime          time.Duration
	AvgSampleSize          float64
	AvgDataAgeDays         float64
	TotalAnalyticsRecords  int
	FinishedAt             time.Time
}

type ResultRecorder interface {
	RecordCohortResults(ctx context.Context, records []CohortResultRecord) error
	RecordBatchSummary(ctx context.Context, record BatchSummaryRecord) error
	Flush(ctx context.Context) error
	Close() error
}

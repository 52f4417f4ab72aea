package batch

import (
	"time"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

type Outcome string

const (
	OutcomeCached   Outcome = "cached"
	OutcomeComputed Outcome = "computed"
	OutcomeFallback Outcome = "fallback"
	OutcomeFailed   Outcome = "failed"
)

func (o Outcome) String() string {
	return string(o)
}

// ProcessingError records one cohort that failed without stopping the batch.
type ProcessingError struct {
	UserID      string         `json:"user_id"`
	Channel     domain.Channel `json:"channel"`
	ContentType string         `json:"content_type"`
	Message     string         `json:"error"`
	SampleSize  int            `json:"sample_size"`
}

func (e ProcessingError) Error() string {
	return e.Message
}

// FatalError is a failure that aborted the whole batch.
type FatalError struct {
	Message string `json:"error"`
}

func (e FatalError) Error() string {
	return e.Message
}

type DataFreshnessStats struct {
	AvgSampleSize float64 `json:"avg_sample_size"`
	// AvgDataAge is the mean number of days between a cohort's newest sample
	// and its calculation time.
	AvgDataAge            float64 `json:"avg_data_age"`
	TotalAnalyticsRecords int     `json:"total_analytics_records"`
}

type CohortReport struct {
	CohortKey  domain.CohortKey           `json:"cohort_key"`
	Outcome    Outcome                    `json:"outcome"`
	SampleSize int                        `json:"sample_size"`
	Results    []domain.OptimalTimeResult `json:"results,omitempty"`
}

type Summary struct {
	RunID                  string             `json:"run_id"`
	DryRun                 bool               `json:"dry_run"`
	TotalCalculations      int                `json:"total_calculations"`
	SuccessfulCalculations int                `json:"successful_calculations"`
	FailedCalculations     int                `json:"failed_calculations"`
	CacheHits              int                `json:"cache_hits"`
	CacheMisses            int                `json:"cache_misses"`
	Errors                 []ProcessingError  `json:"errors"`
	ExecutionTimeMs        int64              `json:"execution_time_ms"`
	DataFreshnessStats     DataFreshnessStats `json:"data_freshness_stats"`
	BudgetExhausted        bool               `json:"budget_exhausted"`
	SkippedCohorts         int                `json:"skipped_cohorts"`
	Cohorts                []CohortReport     `json:"cohorts"`
	Fatal                  *FatalError        `json:"fatal,omitempty"`
}

func newSummary(runID string, dryRun bool) *Summary {
	return &Summary{
		RunID:   runID,
		DryRun:  dryRun,
		Errors:  []ProcessingError{},
		Cohorts: []CohortReport{},
	}
}

// FatalSummary reports a batch that could not start. All counts are zero.
func FatalSummary(runID string, err error) *Summary {
	summary := newSummary(runID, false)
	summary.Fatal = &FatalError{Message: err.Error()}
	return summary
}

func (s *Summary) IsFatal() bool {
	return s.Fatal != nil
}

func (s *Summary) record(finishedAt time.Time, elapsed time.Duration) domain.BatchSummaryRecord {
	return domain.BatchSummaryRecord{
		RunID:                  s.RunID,
		TotalCalculations:      s.TotalCalculations,
		SuccessfulCalculations: s.SuccessfulCalculations,
		FailedCalculations:     s.FailedCalculations,
		CacheHits:              s.CacheHits,
		CacheMisses:            s.CacheMisses,
		SkippedCohorts:         s.SkippedCohorts,
		BudgetExhausted:        s.BudgetExhausted,
		DryRun:                 s.DryRun,
		ExecutionTime:          elapsed,
		AvgSampleSize:          s.DataFreshnessStats.AvgSampleSize,
		AvgDataAgeDays:         s.DataFreshnessStats.AvgDataAge,
		TotalAnalyticsRecords:  s.DataFreshnessStats.TotalAnalyticsRecords,
		FinishedAt:             finishedAt,
	}
}

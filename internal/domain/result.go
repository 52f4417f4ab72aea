package domain

import (
	"fmt"
	"time"
)

// HistoricalStats describes the data behind a recommendation.
type HistoricalStats struct {
	SampleSize     int       `json:"sample_size"`
	AvgEngagement  float64   `json:"avg_engagement"`
	LastCalculated time.Time `json:"last_calculated"`
}

// OptimalTimeResult is one recommended posting slot.
type OptimalTimeResult struct {
	Time               string          `json:"time"`
	DayOfWeek          int             `json:"day_of_week"`
	ExpectedEngagement float64         `json:"expected_engagement"`
	Confidence         float64         `json:"confidence"`
	Historical         HistoricalStats `json:"historical"`
}

// SlotTime formats an hour as the "HH:MM" wall-clock string used in results.
func SlotTime(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// MaxResultsPerCohort bounds every cohort's recommendation list.
const MaxResultsPerCohort = 3

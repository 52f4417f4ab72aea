package testutil

import (
	"time"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

// CacheEntry returns a valid entry for key calculated at calculatedAt with a
// seven day horizon.
func CacheEntry(key domain.CohortKey, calculatedAt time.Time, totalSamples int) *domain.CacheEntry {
	return &domain.CacheEntry{
		CohortKey: key,
		Results: []domain.OptimalTimeResult{
			{
				Time:               "09:00",
				DayOfWeek:          int(time.Tuesday),
				ExpectedEngagement: 0.052,
				Confidence:         0.81,
				Historical: domain.HistoricalStats{
					SampleSize:     12,
					AvgEngagement:  0.052,
					LastCalculated: calculatedAt,
				},
			},
			{
				Time:               "18:00",
				DayOfWeek:          int(time.Thursday),
				ExpectedEngagement: 0.047,
				Confidence:         0.74,
				Historical: domain.HistoricalStats{
					SampleSize:     9,
					AvgEngagement:  0.047,
					LastCalculated: calculatedAt,
				},
			},
		},
		CalculatedAt: calculatedAt,
		ExpiresAt:    calculatedAt.Add(7 * 24 * time.Hour),
		DataFreshness: domain.DataFreshness{
			TotalSamples: totalSamples,
			DateRange: domain.DateRange{
				Start: calculatedAt.AddDate(0, 0, -60),
				End:   calculatedAt.AddDate(0, 0, -1),
			},
			LastSourceUpdate: calculatedAt.AddDate(0, 0, -1),
		},
	}
}

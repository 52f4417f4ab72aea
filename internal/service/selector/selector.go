package selector

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
	"github.com/sngor/bayon-coagent-sub013/internal/service/fallback"
	"github.com/sngor/bayon-coagent-sub013/internal/service/timeslot"
)

const (
	// FallbackConfidenceCap bounds catalog slots used to fill gaps next to
	// data-backed selections.
	FallbackConfidenceCap = 0.6

	minQualifyingSamples = 3
)

type Selector struct {
	limit int
}

func NewSelector() *Selector {
	return &Selector{limit: domain.MaxResultsPerCohort}
}

// Select ranks the significant cells and tops the list up from the channel's
// fallback catalog. Results are ordered by expected engagement, then
// confidence, highest first.
func (s *Selector) Select(channel domain.Channel, cells []*timeslot.Cell, calculatedAt time.Time) ([]domain.OptimalTimeResult, error) {
	qualifying := make([]*timeslot.Cell, 0, len(cells))
	for _, cell := range cells {
		if cell.IsSignificant && cell.SampleCount >= minQualifyingSamples {
			qualifying = append(qualifying, cell)
		}
	}

	sort.Slice(qualifying, func(i, j int) bool {
		a, b := qualifying[i], qualifying[j]
		if a.MeanEngagement != b.MeanEngagement {
			return a.MeanEngagement > b.MeanEngagement
		}
		if a.ConfidenceScore != b.ConfidenceScore {
			return a.ConfidenceScore > b.ConfidenceScore
		}
		return a.Key.Less(b.Key)
	})

	if len(qualifying) > s.limit {
		qualifying = qualifying[:s.limit]
	}

	results := make([]domain.OptimalTimeResult, 0, s.limit)
	taken := make(map[timeslot.Key]struct{}, s.limit)
	for _, cell := range qualifying {
		results = append(results, cellResult(cell, calculatedAt))
		taken[cell.Key] = struct{}{}
	}

	if len(results) < s.limit {
		slots, err := fallback.Slots(channel)
		if err != nil {
			return nil, fmt.Errorf("fallback slots for %q: %w", channel, err)
		}
		for _, slot := range slots {
			if len(results) >= s.limit {
				break
			}
			key := timeslot.Key{DayOfWeek: slot.DayOfWeek, Hour: slot.Hour}
			if _, dup := taken[key]; dup {
				continue
			}
			slot.Confidence = math.Min(slot.Confidence, FallbackConfidenceCap)
			results = append(results, slot.Result(calculatedAt))
			taken[key] = struct{}{}
		}
	}

	SortResults(results)
	return results, nil
}

// SortResults orders results by expected engagement then confidence, highest
// first, breaking ties by day and time.
func SortResults(results []domain.OptimalTimeResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.ExpectedEngagement != b.ExpectedEngagement {
			return a.ExpectedEngagement > b.ExpectedEngagement
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		return a.Time < b.Time
	})
}

func cellResult(cell *timeslot.Cell, calculatedAt time.Time) domain.OptimalTimeResult {
	return domain.OptimalTimeResult{
		Time:               domain.SlotTime(cell.Hour),
		DayOfWeek:          int(cell.DayOfWeek),
		ExpectedEngagement: cell.MeanEngagement,
		Confidence:         cell.ConfidenceScore,
		Historical: domain.HistoricalStats{
			SampleSize:     cell.SampleCount,
			AvgEngagement:  cell.MeanEngagement,
			LastCalculated: calculatedAt,
		},
	}
}

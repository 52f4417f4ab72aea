package batch

import (
	"time"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
	"github.com/sngor/bayon-coagent-sub013/internal/service/seasonal"
	"github.com/sngor/bayon-coagent-sub013/internal/service/selector"
	"github.com/sngor/bayon-coagent-sub013/internal/service/significance"
	"github.com/sngor/bayon-coagent-sub013/internal/service/timeslot"
	"github.com/sngor/bayon-coagent-sub013/internal/service/trend"
)

type Calculation struct {
	Results          []domain.OptimalTimeResult
	Cells            []*timeslot.Cell
	DroppedCells     int
	SignificantCells int
}

// Calculator runs the per-cohort statistics pipeline over one sample set.
type Calculator struct {
	aggregator *timeslot.Aggregator
	analyzer   *significance.Analyzer
	detector   *trend.Detector
	adjuster   *seasonal.Adjuster
	selector   *selector.Selector
}

func NewCalculator() *Calculator {
	return &Calculator{
		aggregator: timeslot.NewAggregator(),
		analyzer:   significance.NewAnalyzer(),
		detector:   trend.NewDetector(),
		adjuster:   seasonal.NewAdjuster(),
		selector:   selector.NewSelector(),
	}
}

func (c *Calculator) Calculate(channel domain.Channel, samples []domain.EngagementSample, calculatedAt time.Time) (*Calculation, error) {
	cells, dropped := c.aggregator.Aggregate(samples)
	c.analyzer.Analyze(cells)
	c.detector.Detect(cells)
	c.adjuster.Adjust(cells)

	results, err := c.selector.Select(channel, cells, calculatedAt)
	if err != nil {
		return nil, err
	}

	significant := 0
	for _, cell := range cells {
		if cell.IsSignificant {
			significant++
		}
	}

	return &Calculation{
		Results:          results,
		Cells:            cells,
		DroppedCells:     dropped,
		SignificantCells: significant,
	}, nil
}

// Freshness describes the sample set behind a calculation.
func Freshness(samples []domain.EngagementSample) domain.DataFreshness {
	freshness := domain.DataFreshness{TotalSamples: len(samples)}
	if len(samples) == 0 {
		return freshness
	}

	first, last := samples[0].PublishedAt, samples[0].PublishedAt
	for _, s := range samples[1:] {
		if s.PublishedAt.Before(first) {
			first = s.PublishedAt
		}
		if s.PublishedAt.After(last) {
			last = s.PublishedAt
		}
	}

	freshness.DateRange = domain.DateRange{Start: first, End: last}
	freshness.LastSourceUpdate = last
	return freshness
}

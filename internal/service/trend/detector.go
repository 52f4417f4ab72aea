package trend

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
	"github.com/sngor/bayon-coagent-sub013/internal/service/timeslot"
)

const (
	// SlopeThreshold is the per-day change in engagement rate that separates
	// a trend from noise.
	SlopeThreshold = 0.001

	minRegressionPoints = 3

	hoursPerDay = 24.0
)

type Detector struct {
	threshold float64
}

func NewDetector() *Detector {
	return &Detector{threshold: SlopeThreshold}
}

func (d *Detector) Detect(cells []*timeslot.Cell) {
	for _, cell := range cells {
		cell.TrendSlope, cell.TrendDirection = d.Classify(cell.Samples)
	}
}

// Classify regresses engagement rate on days since the earliest sample.
// Fewer than three points, or points sharing a single timestamp, are stable.
func (d *Detector) Classify(samples []domain.EngagementSample) (float64, timeslot.TrendDirection) {
	if len(samples) < minRegressionPoints {
		return 0, timeslot.TrendStable
	}

	ordered := make([]domain.EngagementSample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PublishedAt.Before(ordered[j].PublishedAt)
	})

	first := ordered[0].PublishedAt
	x := make([]float64, len(ordered))
	y := make([]float64, len(ordered))
	for i, s := range ordered {
		x[i] = s.PublishedAt.Sub(first).Hours() / hoursPerDay
		y[i] = s.EngagementRate
	}

	if x[len(x)-1] == x[0] {
		return 0, timeslot.TrendStable
	}

	_, slope := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, timeslot.TrendStable
	}

	switch {
	case slope > d.threshold:
		return slope, timeslot.TrendIncreasing
	case slope < -d.threshold:
		return slope, timeslot.TrendDecreasing
	default:
		return slope, timeslot.TrendStable
	}
}

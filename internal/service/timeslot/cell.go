package timeslot

import (
	"time"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

// Key identifies a time-of-week bucket.
type Key struct {
	DayOfWeek time.Weekday
	Hour      int
}

func KeyOf(t time.Time) Key {
	u := t.UTC()
	return Key{DayOfWeek: u.Weekday(), Hour: u.Hour()}
}

func (k Key) Less(other Key) bool {
	if k.DayOfWeek != other.DayOfWeek {
		return k.DayOfWeek < other.DayOfWeek
	}
	return k.Hour < other.Hour
}

func (k Key) IsWeekend() bool {
	return k.DayOfWeek == time.Saturday || k.DayOfWeek == time.Sunday
}

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

type ConfidenceInterval struct {
	Lower float64
	Upper float64
}

// Cell is one bucket's samples plus the statistics derived from them during
// a single calculation.
type Cell struct {
	Key
	Samples []domain.EngagementSample

	SampleCount        int
	MeanEngagement     float64
	Variance           float64
	StdDev             float64
	TStatistic         float64
	ConfidenceInterval ConfidenceInterval
	ConfidenceScore    float64
	IsSignificant      bool

	TrendDirection TrendDirection
	TrendSlope     float64

	SeasonalFactor float64
}

// Rates returns the engagement rates of the cell's samples in sample order.
func (c *Cell) Rates() []float64 {
	rates := make([]float64, len(c.Samples))
	for i, s := range c.Samples {
		rates[i] = s.EngagementRate
	}
	return rates
}

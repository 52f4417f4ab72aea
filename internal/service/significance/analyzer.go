package significance

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sngor/bayon-coagent-sub013/internal/service/timeslot"
)

const (
	// TThreshold approximates the two-tailed 95% critical value. It is a
	// fixed heuristic, not a Student's t lookup.
	TThreshold = 2.0

	// MinSignificantSamples is the smallest cell that may be flagged significant.
	MinSignificantSamples = 5

	zScore95 = 1.96

	volumeWeight      = 0.6
	consistencyWeight = 0.4
	volumeSaturation  = 10.0
)

type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze fills the descriptive statistics of every cell in place.
func (a *Analyzer) Analyze(cells []*timeslot.Cell) {
	for _, cell := range cells {
		a.AnalyzeCell(cell)
	}
}

func (a *Analyzer) AnalyzeCell(cell *timeslot.Cell) {
	rates := cell.Rates()
	n := len(rates)
	cell.SampleCount = n
	if n == 0 {
		return
	}

	mean, variance := stat.PopMeanVariance(rates, nil)
	if constant(rates) {
		// Summation rounding leaves a residue on identical inputs.
		mean, variance = rates[0], 0
	} else if variance < 0 {
		variance = 0
	}
	stdDev := math.Sqrt(variance)

	cell.MeanEngagement = mean
	cell.Variance = variance
	cell.StdDev = stdDev

	sqrtN := math.Sqrt(float64(n))
	margin := zScore95 * stdDev / sqrtN
	cell.ConfidenceInterval = timeslot.ConfidenceInterval{
		Lower: mean - margin,
		Upper: mean + margin,
	}

	cell.TStatistic = TStatistic(mean, stdDev, n)
	cell.IsSignificant = n >= MinSignificantSamples && math.Abs(cell.TStatistic) > TThreshold
	cell.ConfidenceScore = ConfidenceScore(mean, stdDev, n)
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// TStatistic returns mean / (stdDev / sqrt(n)). A zero deviation yields +Inf
// so that constant cells clear any finite threshold.
func TStatistic(mean, stdDev float64, n int) float64 {
	if n == 0 {
		return 0
	}
	if stdDev == 0 {
		return math.Inf(1)
	}
	return mean / (stdDev / math.Sqrt(float64(n)))
}

// ConfidenceScore blends sample volume with consistency. The consistency term
// lies in [0, 1]: 0 when the mean is not positive, 1 when the deviation is 0.
func ConfidenceScore(mean, stdDev float64, n int) float64 {
	volume := math.Max(0, math.Min(float64(n)/volumeSaturation, 1))

	var consistency float64
	switch {
	case mean <= 0 || math.IsNaN(mean):
		consistency = 0
	case stdDev == 0:
		consistency = 1
	default:
		consistency = math.Min(1, math.Max(0, 1-stdDev/mean))
	}

	return volumeWeight*volume + consistencyWeight*consistency
}

package significance

import (
	"math"
	"testing"
	"time"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
	"github.com/sngor/bayon-coagent-sub013/internal/service/timeslot"
)

const epsilon = 1e-9

func cellWithRates(rates ...float64) *timeslot.Cell {
	base := time.Date(2026, 1, 6, 9, 0, 0, 0, time.UTC)
	samples := make([]domain.EngagementSample, len(rates))
	for i, r := range rates {
		samples[i] = domain.EngagementSample{
			Channel:        domain.ChannelLinkedIn,
			PublishedAt:    base.AddDate(0, 0, 7*i),
			EngagementRate: r,
		}
	}
	return &timeslot.Cell{
		Key:         timeslot.KeyOf(base),
		Samples:     samples,
		SampleCount: len(samples),
	}
}

func TestAnalyzer_ZeroVarianceCell(t *testing.T) {
	rates := make([]float64, 20)
	for i := range rates {
		rates[i] = 0.05
	}
	cell := cellWithRates(rates...)

	NewAnalyzer().AnalyzeCell(cell)

	if cell.StdDev != 0 {
		t.Errorf("StdDev: got %v, want 0", cell.StdDev)
	}
	if !cell.IsSignificant {
		t.Error("IsSignificant: got false, want true")
	}
	if !math.IsInf(cell.TStatistic, 1) {
		t.Errorf("TStatistic: got %v, want +Inf", cell.TStatistic)
	}
	// volume saturates at 1, consistency term is 1
	if math.Abs(cell.ConfidenceScore-1.0) > epsilon {
		t.Errorf("ConfidenceScore: got %v, want 1.0", cell.ConfidenceScore)
	}
	if math.IsNaN(cell.ConfidenceScore) {
		t.Error("ConfidenceScore is NaN")
	}
}

func TestAnalyzer_Statistics(t *testing.T) {
	cell := cellWithRates(0.02, 0.04, 0.06, 0.04, 0.04)

	NewAnalyzer().AnalyzeCell(cell)

	wantMean := 0.04
	wantVariance := (0.0004 + 0 + 0.0004 + 0 + 0) / 5
	if math.Abs(cell.MeanEngagement-wantMean) > epsilon {
		t.Errorf("MeanEngagement: got %v, want %v", cell.MeanEngagement, wantMean)
	}
	if math.Abs(cell.Variance-wantVariance) > epsilon {
		t.Errorf("Variance: got %v, want %v", cell.Variance, wantVariance)
	}
	if math.Abs(cell.StdDev-math.Sqrt(wantVariance)) > epsilon {
		t.Errorf("StdDev: got %v, want %v", cell.StdDev, math.Sqrt(wantVariance))
	}

	wantT := wantMean / (math.Sqrt(wantVariance) / math.Sqrt(5))
	if math.Abs(cell.TStatistic-wantT) > 1e-6 {
		t.Errorf("TStatistic: got %v, want %v", cell.TStatistic, wantT)
	}
	if !cell.IsSignificant {
		t.Error("IsSignificant: got false, want true")
	}

	margin := 1.96 * math.Sqrt(wantVariance) / math.Sqrt(5)
	if math.Abs(cell.ConfidenceInterval.Lower-(wantMean-margin)) > epsilon ||
		math.Abs(cell.ConfidenceInterval.Upper-(wantMean+margin)) > epsilon {
		t.Errorf("ConfidenceInterval: got %+v", cell.ConfidenceInterval)
	}

	wantScore := 0.6*0.5 + 0.4*(1-math.Sqrt(wantVariance)/wantMean)
	if math.Abs(cell.ConfidenceScore-wantScore) > epsilon {
		t.Errorf("ConfidenceScore: got %v, want %v", cell.ConfidenceScore, wantScore)
	}
}

func TestAnalyzer_SignificanceRequiresFiveSamples(t *testing.T) {
	// Zero variance but only four samples.
	cell := cellWithRates(0.05, 0.05, 0.05, 0.05)

	NewAnalyzer().AnalyzeCell(cell)

	if cell.IsSignificant {
		t.Error("IsSignificant: got true for n=4, want false")
	}
}

func TestAnalyzer_NoisyCellNotSignificant(t *testing.T) {
	cell := cellWithRates(0, 0, 0, 0, 0.5)

	NewAnalyzer().AnalyzeCell(cell)

	if math.Abs(cell.TStatistic) > TThreshold {
		t.Fatalf("TStatistic: got %v, expected below threshold", cell.TStatistic)
	}
	if cell.IsSignificant {
		t.Error("IsSignificant: got true, want false")
	}
}

func TestConfidenceScore_ZeroMean(t *testing.T) {
	tests := []struct {
		name   string
		mean   float64
		stdDev float64
		n      int
		want   float64
	}{
		{name: "zero mean with spread", mean: 0, stdDev: 0.1, n: 10, want: 0.6},
		{name: "zero mean constant", mean: 0, stdDev: 0, n: 5, want: 0.3},
		{name: "deviation above mean", mean: 0.01, stdDev: 0.05, n: 10, want: 0.6},
		{name: "constant non-zero", mean: 0.02, stdDev: 0, n: 3, want: 0.6*0.3 + 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConfidenceScore(tt.mean, tt.stdDev, tt.n)
			if math.IsNaN(got) {
				t.Fatal("ConfidenceScore is NaN")
			}
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("ConfidenceScore: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyzer_Invariants(t *testing.T) {
	inputs := [][]float64{
		{0.01, 0.02, 0.03},
		{0, 0, 0, 0, 0},
		{0.1, 0.1, 0.1, 0.2, 0.3, 0.05},
		{0.07, 0.07, 0.0700001, 0.07, 0.07},
	}

	for _, rates := range inputs {
		cell := cellWithRates(rates...)
		NewAnalyzer().AnalyzeCell(cell)

		if cell.Variance < 0 {
			t.Errorf("%v: negative variance %v", rates, cell.Variance)
		}
		if math.Abs(cell.StdDev-math.Sqrt(cell.Variance)) > epsilon {
			t.Errorf("%v: StdDev %v != sqrt(Variance)", rates, cell.StdDev)
		}
		if cell.ConfidenceInterval.Lower > cell.MeanEngagement || cell.MeanEngagement > cell.ConfidenceInterval.Upper {
			t.Errorf("%v: mean %v outside %+v", rates, cell.MeanEngagement, cell.ConfidenceInterval)
		}
		if cell.IsSignificant && (cell.SampleCount < MinSignificantSamples || math.Abs(cell.TStatistic) <= TThreshold) {
			t.Errorf("%v: significant with n=%d t=%v", rates, cell.SampleCount, cell.TStatistic)
		}
		if cell.ConfidenceScore < 0 || cell.ConfidenceScore > 1 {
			t.Errorf("%v: ConfidenceScore %v out of range", rates, cell.ConfidenceScore)
		}
	}
}

func TestConfidenceScore_StaysInUnitRange(t *testing.T) {
	tests := []struct {
		name   string
		mean   float64
		stdDev float64
		n      int
		want   float64
	}{
		{name: "negative mean", mean: -0.01, stdDev: 0.05, n: 10, want: 0.6},
		{name: "negative mean constant", mean: -0.02, stdDev: 0, n: 10, want: 0.6},
		{name: "NaN mean", mean: math.NaN(), stdDev: 0.05, n: 10, want: 0.6},
		{name: "tight spread", mean: 0.1, stdDev: 0.01, n: 20, want: 0.6 + 0.4*0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConfidenceScore(tt.mean, tt.stdDev, tt.n)
			if got < 0 || got > 1 {
				t.Fatalf("ConfidenceScore: got %v, want within [0, 1]", got)
			}
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("ConfidenceScore: got %v, want %v", got, tt.want)
			}
		})
	}
}

package seasonal

import "github.com/sngor/bayon-coagent-sub013/internal/service/timeslot"

const (
	weekendFactor  = 0.9
	businessFactor = 1.1
	eveningFactor  = 1.2
	nightFactor    = 0.7
	neutralFactor  = 1.0
)

// Adjuster attaches a static time-of-week multiplier to each cell. The factor
// is informational; ranking does not read it.
type Adjuster struct{}

func NewAdjuster() *Adjuster {
	return &Adjuster{}
}

func (a *Adjuster) Adjust(cells []*timeslot.Cell) {
	for _, cell := range cells {
		cell.SeasonalFactor = Factor(cell.Key)
	}
}

// Factor multiplies the day factor by the hour factor.
func Factor(key timeslot.Key) float64 {
	day := neutralFactor
	if key.IsWeekend() {
		day = weekendFactor
	}
	return day * hourFactor(key.Hour)
}

func hourFactor(hour int) float64 {
	switch {
	case hour >= 9 && hour <= 17:
		return businessFactor
	case hour >= 18 && hour <= 21:
		return eveningFactor
	case hour >= 22 || hour <= 6:
		return nightFactor
	default:
		return neutralFactor
	}
}

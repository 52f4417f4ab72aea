// Package fallback holds the static per-channel posting times used when a
// cohort has too little history to support its own recommendation.
package fallback

import (
	"time"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

const (
	// MinConfidence and MaxConfidence bound every catalog slot.
	MinConfidence = 0.6
	MaxConfidence = 0.7

	slotsPerChannel = domain.MaxResultsPerCohort
)

// Slot is one default recommendation.
type Slot struct {
	DayOfWeek          time.Weekday
	Hour               int
	ExpectedEngagement float64
	Confidence         float64
}

// Slots are ordered by expected engagement, highest first.
var catalog = map[domain.Channel][slotsPerChannel]Slot{
	domain.ChannelFacebook: {
		{DayOfWeek: time.Wednesday, Hour: 11, ExpectedEngagement: 0.045, Confidence: 0.7},
		{DayOfWeek: time.Thursday, Hour: 13, ExpectedEngagement: 0.042, Confidence: 0.65},
		{DayOfWeek: time.Friday, Hour: 9, ExpectedEngagement: 0.038, Confidence: 0.6},
	},
	domain.ChannelInstagram: {
		{DayOfWeek: time.Tuesday, Hour: 11, ExpectedEngagement: 0.068, Confidence: 0.7},
		{DayOfWeek: time.Wednesday, Hour: 14, ExpectedEngagement: 0.064, Confidence: 0.65},
		{DayOfWeek: time.Friday, Hour: 10, ExpectedEngagement: 0.059, Confidence: 0.6},
	},
	domain.ChannelLinkedIn: {
		{DayOfWeek: time.Tuesday, Hour: 10, ExpectedEngagement: 0.054, Confidence: 0.7},
		{DayOfWeek: time.Wednesday, Hour: 12, ExpectedEngagement: 0.051, Confidence: 0.65},
		{DayOfWeek: time.Thursday, Hour: 9, ExpectedEngagement: 0.047, Confidence: 0.6},
	},
	domain.ChannelTwitter: {
		{DayOfWeek: time.Wednesday, Hour: 9, ExpectedEngagement: 0.031, Confidence: 0.7},
		{DayOfWeek: time.Thursday, Hour: 12, ExpectedEngagement: 0.029, Confidence: 0.65},
		{DayOfWeek: time.Friday, Hour: 15, ExpectedEngagement: 0.026, Confidence: 0.6},
	},
}

// Slots returns a copy of the channel's default slots.
func Slots(channel domain.Channel) ([slotsPerChannel]Slot, error) {
	slots, ok := catalog[channel]
	if !ok {
		return [slotsPerChannel]Slot{}, domain.ErrUnknownChannel
	}
	return slots, nil
}

// Results renders the channel's default slots as recommendations stamped
// with calculatedAt.
func Results(channel domain.Channel, calculatedAt time.Time) ([]domain.OptimalTimeResult, error) {
	slots, err := Slots(channel)
	if err != nil {
		return nil, err
	}

	results := make([]domain.OptimalTimeResult, 0, len(slots))
	for _, s := range slots {
		results = append(results, s.Result(calculatedAt))
	}
	return results, nil
}

func (s Slot) Result(calculatedAt time.Time) domain.OptimalTimeResult {
	return domain.OptimalTimeResult{
		Time:               domain.SlotTime(s.Hour),
		DayOfWeek:          int(s.DayOfWeek),
		ExpectedEngagement: s.ExpectedEngagement,
		Confidence:         s.Confidence,
		Historical: domain.HistoricalStats{
			SampleSize:     0,
			AvgEngagement:  s.ExpectedEngagement,
			LastCalculated: calculatedAt,
		},
	}
}

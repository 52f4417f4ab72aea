package timeslot

import (
	"sort"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

// MinCellSamples is the smallest bucket that can carry a variance estimate.
// Smaller buckets are dropped before any statistics run.
const MinCellSamples = 3

type Aggregator struct {
	minSamples int
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		minSamples: MinCellSamples,
	}
}

// Bucket groups samples by the UTC (day-of-week, hour) of their publish time.
func Bucket(samples []domain.EngagementSample) map[Key][]domain.EngagementSample {
	buckets := make(map[Key][]domain.EngagementSample)
	for _, s := range samples {
		key := KeyOf(s.PublishedAt)
		buckets[key] = append(buckets[key], s)
	}
	return buckets
}

// Aggregate buckets the samples and returns the retained cells ordered by
// key, together with the number of buckets dropped for having too few samples.
func (a *Aggregator) Aggregate(samples []domain.EngagementSample) (cells []*Cell, dropped int) {
	buckets := Bucket(samples)

	cells = make([]*Cell, 0, len(buckets))
	for key, bucket := range buckets {
		if len(bucket) < a.minSamples {
			dropped++
			continue
		}
		cells = append(cells, &Cell{
			Key:            key,
			Samples:        bucket,
			SampleCount:    len(bucket),
			TrendDirection: TrendStable,
			SeasonalFactor: 1.0,
		})
	}

	sort.Slice(cells, func(i, j int) bool {
		return cells[i].Key.Less(cells[j].Key)
	})

	return cells, dropped
}

package cachestore

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

const cacheKeyPrefix = "optimizer:cache:"

type resultRecord struct {
	Time               string    `json:"time"`
	DayOfWeek          int       `json:"day_of_week"`
	ExpectedEngagement float64   `json:"expected_engagement"`
	Confidence         float64   `json:"confidence"`
	SampleSize         int       `json:"sample_size"`
	AvgEngagement      float64   `json:"avg_engagement"`
	LastCalculated     time.Time `json:"last_calculated"`
}

type entryRecord struct {
	UserID           string         `json:"user_id"`
	Channel          string         `json:"channel"`
	ContentType      string         `json:"content_type"`
	Results          []resultRecord `json:"results"`
	CalculatedAt     time.Time      `json:"calculated_at"`
	ExpiresAt        time.Time      `json:"expires_at"`
	TotalSamples     int            `json:"total_samples"`
	RangeStart       time.Time      `json:"range_start"`
	RangeEnd         time.Time      `json:"range_end"`
	LastSourceUpdate time.Time      `json:"last_source_update"`
}

// cacheKey renders optimizer:cache:<user>:<channel>:<contentType>.
func cacheKey(key domain.CohortKey) string {
	return cacheKeyPrefix + key.String()
}

func encodeEntry(entry *domain.CacheEntry) ([]byte, error) {
	if entry == nil {
		return nil, ErrInvalidEntryData
	}

	record := entryRecord{
		UserID:           entry.CohortKey.UserID,
		Channel:          entry.CohortKey.Channel.String(),
		ContentType:      entry.CohortKey.ContentType,
		Results:          make([]resultRecord, 0, len(entry.Results)),
		CalculatedAt:     entry.CalculatedAt,
		ExpiresAt:        entry.ExpiresAt,
		TotalSamples:     entry.DataFreshness.TotalSamples,
		RangeStart:       entry.DataFreshness.DateRange.Start,
		RangeEnd:         entry.DataFreshness.DateRange.End,
		LastSourceUpdate: entry.DataFreshness.LastSourceUpdate,
	}
	for _, r := range entry.Results {
		record.Results = append(record.Results, resultRecord{
			Time:               r.Time,
			DayOfWeek:          r.DayOfWeek,
			ExpectedEngagement: r.ExpectedEngagement,
			Confidence:         r.Confidence,
			SampleSize:         r.Historical.SampleSize,
			AvgEngagement:      r.Historical.AvgEngagement,
			LastCalculated:     r.Historical.LastCalculated,
		})
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEntryData, err)
	}
	return data, nil
}

func decodeEntry(data []byte) (*domain.CacheEntry, error) {
	var record entryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEntryData, err)
	}

	entry := &domain.CacheEntry{
		CohortKey:    domain.NewCohortKey(record.UserID, domain.Channel(record.Channel), record.ContentType),
		Results:      make([]domain.OptimalTimeResult, 0, len(record.Results)),
		CalculatedAt: record.CalculatedAt,
		ExpiresAt:    record.ExpiresAt,
		DataFreshness: domain.DataFreshness{
			TotalSamples: record.TotalSamples,
			DateRange: domain.DateRange{
				Start: record.RangeStart,
				End:   record.RangeEnd,
			},
			LastSourceUpdate: record.LastSourceUpdate,
		},
	}
	for _, r := range record.Results {
		entry.Results = append(entry.Results, domain.OptimalTimeResult{
			Time:               r.Time,
			DayOfWeek:          r.DayOfWeek,
			ExpectedEngagement: r.ExpectedEngagement,
			Confidence:         r.Confidence,
			Historical: domain.HistoricalStats{
				SampleSize:     r.SampleSize,
				AvgEngagement:  r.AvgEngagement,
				LastCalculated: r.LastCalculated,
			},
		})
	}

	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEntryData, err)
	}
	return entry, nil
}

// entryFor decodes data and checks that it belongs to key. An entry stored
// for another cohort is reported as not found.
func entryFor(key domain.CohortKey, data []byte) (*domain.CacheEntry, error) {
	entry, err := decodeEntry(data)
	if err != nil {
		return nil, err
	}
	if entry.CohortKey != key {
		return nil, domain.ErrCacheEntryNotFound
	}
	return entry, nil
}

// encodeEntryFor encodes entry after checking it is keyed by key.
func encodeEntryFor(key domain.CohortKey, entry *domain.CacheEntry) ([]byte, error) {
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEntryData, err)
	}
	if entry != nil && entry.CohortKey != key {
		return nil, fmt.Errorf("%w: entry for %s stored under %s", ErrInvalidEntryData, entry.CohortKey, key)
	}
	return encodeEntry(entry)
}

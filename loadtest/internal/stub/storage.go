package stub

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"sync"
	"time"
)

type Cohort struct {
	UserID      string
	Channel     string
	ContentType string
	StartTime   time.Time
	EndTime     time.Time
	Count       int
	PeakDay     time.Weekday
	PeakHour    int
	BaseRate    float64
	PeakRate    float64
}

type CohortStorage struct {
	mu      sync.RWMutex
	cohorts map[string][]*Cohort // runID -> cohorts
}

func NewCohortStorage() *CohortStorage {
	return &CohortStorage{
		cohorts: make(map[string][]*Cohort),
	}
}

func (s *CohortStorage) Reset(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cohorts, runID)
}

func (s *CohortStorage) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cohorts = make(map[string][]*Cohort)
}

func (s *CohortStorage) AddCohort(runID string, cohort *Cohort) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cohorts[runID] = append(s.cohorts[runID], cohort)
}

// Samples returns the cohort's samples published at or after since, newest
// first, at most limit of them.
func (s *CohortStorage) Samples(runID, userID, channel, contentType string, since time.Time, limit int) []SampleResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var samples []SampleResponse
	for _, cohort := range s.cohorts[runID] {
		if cohort.UserID != userID || cohort.Channel != channel || cohort.ContentType != contentType {
			continue
		}
		samples = append(samples, generateSamples(runID, cohort, since)...)
	}

	slices.SortFunc(samples, func(a, b SampleResponse) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	if limit > 0 && len(samples) > limit {
		samples = samples[:limit]
	}

	return samples
}

func (s *CohortStorage) UserIDs(runID string, limit int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for _, cohort := range s.cohorts[runID] {
		if !slices.Contains(ids, cohort.UserID) {
			ids = append(ids, cohort.UserID)
		}
	}
	slices.Sort(ids)

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func generateSamples(runID string, cohort *Cohort, since time.Time) []SampleResponse {
	if cohort.Count == 0 {
		return nil
	}

	duration := cohort.EndTime.Sub(cohort.StartTime)
	if duration <= 0 {
		duration = time.Hour
	}

	interval := duration / time.Duration(cohort.Count)
	if interval == 0 {
		interval = time.Second
	}

	samples := make([]SampleResponse, 0, cohort.Count)
	for i := 0; i < cohort.Count; i++ {
		publishedAt := cohort.StartTime.Add(time.Duration(i) * interval).UTC()
		if publishedAt.Before(since) {
			continue
		}

		rate := cohort.BaseRate
		if publishedAt.Weekday() == cohort.PeakDay && publishedAt.Hour() == cohort.PeakHour {
			rate = cohort.PeakRate
		}

		samples = append(samples, SampleResponse{
			ContentType:    cohort.ContentType,
			PublishedAt:    publishedAt,
			EngagementRate: rate,
			SourceID:       generateSampleID(runID, cohort, i),
		})
	}

	return samples
}

func generateSampleID(runID string, cohort *Cohort, index int) string {
	input := fmt.Sprintf("%s-%s-%s-%s-%d", runID, cohort.UserID, cohort.Channel, cohort.ContentType, index)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%s-%s", cohort.UserID, hex.EncodeToString(hash[:8]))
}

package domain

import (
	"context"
	"math"
	"time"
)

//go:generate mockgen -source=engagement.go -destination=engagement_mock.go -package=domain

// EngagementSample is one historical post and the engagement it earned.
type EngagementSample struct {
	Channel        Channel
	ContentType    string
	PublishedAt    time.Time
	EngagementRate float64
	SourceID       string
}

// Validate rejects rates that are negative or not finite.
func (s EngagementSample) Validate() error {
	if math.IsNaN(s.EngagementRate) || math.IsInf(s.EngagementRate, 0) || s.EngagementRate < 0 {
		return ErrInvalidSample
	}
	return nil
}

// SampleQuery selects a cohort's samples published at or after Since.
// Limit caps the number of records; the most recent records win.
type SampleQuery struct {
	UserID      string
	Channel     Channel
	ContentType string
	Since       time.Time
	Limit       int
}

func (q SampleQuery) CohortKey() CohortKey {
	return NewCohortKey(q.UserID, q.Channel, q.ContentType)
}

// EngagementRepository reads historical engagement. Samples are returned
// ordered by PublishedAt ascending.
type EngagementRepository interface {
	QuerySamples(ctx context.Context, query SampleQuery) ([]EngagementSample, error)
	ListUserIDs(ctx context.Context, limit int) ([]string, error)
}

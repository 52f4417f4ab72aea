package stub

import "time"

type SampleResponse struct {
	ContentType    string    `json:"content_type"`
	PublishedAt    time.Time `json:"published_at"`
	EngagementRate float64   `json:"engagement_rate"`
	SourceID       string    `json:"source_id"`
}

type SamplesResponse struct {
	Samples []SampleResponse `json:"samples"`
	Count   int              `json:"count"`
}

type UsersResponse struct {
	UserIDs []string `json:"user_ids"`
}

type SeedRequest struct {
	Cohorts []SeedCohort `json:"cohorts"`
}

// SeedCohort describes a synthetic posting history: Count posts spread evenly
// between StartTime and EndTime, earning PeakRate when published in the
// PeakDay/PeakHour slot and BaseRate otherwise.
type SeedCohort struct {
	UserID      string  `json:"user_id"`
	Channel     string  `json:"channel"`
	ContentType string  `json:"content_type"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Count       int     `json:"count"`
	PeakDay     int     `json:"peak_day"`
	PeakHour    int     `json:"peak_hour"`
	BaseRate    float64 `json:"base_rate"`
	PeakRate    float64 `json:"peak_rate"`
}

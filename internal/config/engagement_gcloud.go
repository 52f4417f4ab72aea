//go:build gcloud

package config

func sourceSupported(source EngagementSource) bool {
	switch source {
	case EngagementSourcePostgres, EngagementSourceDuckDB, EngagementSourceHTTP, EngagementSourceBigQuery:
		return true
	default:
		return false
	}
}

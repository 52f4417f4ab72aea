package resultrecorder

import (
	"os"
)

type Config struct {
	Disabled bool

	InfluxDBURL    string
	InfluxDBToken  string
	InfluxDBOrg    string
	InfluxDBBucket string

	BigQueryProjectID    string
	BigQueryDataset      string
	BigQueryResultsTable string
	BigQuerySummaryTable string
}

func LoadConfig() *Config {
	return &Config{
		Disabled: os.Getenv("OPTIMIZER_RESULTS_DISABLED") == "true",

		InfluxDBURL:    getEnvOrDefault("INFLUXDB_URL", "http://localhost:8086"),
		InfluxDBToken:  os.Getenv("INFLUXDB_TOKEN"),
		InfluxDBOrg:    os.Getenv("INFLUXDB_ORG"),
		InfluxDBBucket: getEnvOrDefault("INFLUXDB_BUCKET", "optimizer_results"),

		BigQueryProjectID:    getEnvOrDefault("BIGQUERY_PROJECT_ID", os.Getenv("GOOGLE_CLOUD_PROJECT")),
		BigQueryDataset:      getEnvOrDefault("BIGQUERY_DATASET", "optimizer_results"),
		BigQueryResultsTable: getEnvOrDefault("BIGQUERY_TABLE", "cohort_results"),
		BigQuerySummaryTable: getEnvOrDefault("BIGQUERY_SUMMARY_TABLE", "batch_summaries"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

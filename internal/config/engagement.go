package config

import (
	"fmt"
	"os"
)

const (
	engagementSourceEnv      = "ENGAGEMENT_SOURCE"
	engagementPostgresDSNEnv = "ENGAGEMENT_POSTGRES_DSN"
	engagementDuckDBPathEnv  = "ENGAGEMENT_DUCKDB_PATH"
	engagementDuckDBImport   = "ENGAGEMENT_DUCKDB_IMPORT"
	engagementHTTPURLEnv     = "ENGAGEMENT_HTTP_URL"
	engagementTableEnv       = "ENGAGEMENT_TABLE"

	engagementBigQueryProjectEnv = "ENGAGEMENT_BIGQUERY_PROJECT_ID"
	engagementBigQueryDatasetEnv = "ENGAGEMENT_BIGQUERY_DATASET"
	engagementBigQueryTableEnv   = "ENGAGEMENT_BIGQUERY_TABLE"

	defaultEngagementSource = EngagementSourcePostgres
	defaultEngagementTable  = "engagement_samples"
)

type EngagementSource string

const (
	EngagementSourcePostgres EngagementSource = "postgres"
	EngagementSourceDuckDB   EngagementSource = "duckdb"
	EngagementSourceHTTP     EngagementSource = "http"
	EngagementSourceBigQuery EngagementSource = "bigquery"
)

type EngagementConfig struct {
	Source EngagementSource
	Table  string

	PostgresDSN string

	DuckDBPath   string
	DuckDBImport string

	HTTPURL string

	BigQueryProjectID string
	BigQueryDataset   string
	BigQueryTable     string
}

func LoadEngagementConfig() *EngagementConfig {
	source := EngagementSource(os.Getenv(engagementSourceEnv))
	if source == "" {
		source = defaultEngagementSource
	}

	table := os.Getenv(engagementTableEnv)
	if table == "" {
		table = defaultEngagementTable
	}

	return &EngagementConfig{
		Source: source,
		Table:  table,

		PostgresDSN: os.Getenv(engagementPostgresDSNEnv),

		DuckDBPath:   os.Getenv(engagementDuckDBPathEnv),
		DuckDBImport: os.Getenv(engagementDuckDBImport),

		HTTPURL: os.Getenv(engagementHTTPURLEnv),

		BigQueryProjectID: os.Getenv(engagementBigQueryProjectEnv),
		BigQueryDataset:   os.Getenv(engagementBigQueryDatasetEnv),
		BigQueryTable:     os.Getenv(engagementBigQueryTableEnv),
	}
}

func (c *EngagementConfig) Validate() error {
	if !sourceSupported(c.Source) {
		return fmt.Errorf("%w: %q", ErrUnknownEngagementSource, c.Source)
	}

	switch c.Source {
	case EngagementSourcePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: %s is required", ErrEngagementSourceConfig, engagementPostgresDSNEnv)
		}
	case EngagementSourceHTTP:
		if c.HTTPURL == "" {
			return fmt.Errorf("%w: %s is required", ErrEngagementSourceConfig, engagementHTTPURLEnv)
		}
	case EngagementSourceBigQuery:
		if c.BigQueryProjectID == "" || c.BigQueryDataset == "" {
			return fmt.Errorf("%w: %s and %s are required", ErrEngagementSourceConfig,
				engagementBigQueryProjectEnv, engagementBigQueryDatasetEnv)
		}
	}

	return nil
}

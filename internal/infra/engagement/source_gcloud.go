//go:build gcloud

package engagement

import (
	"context"

	"github.com/sngor/bayon-coagent-sub013/internal/config"
)

func openPlatformSource(ctx context.Context, cfg *config.EngagementConfig) (Source, error) {
	if cfg.Source != config.EngagementSourceBigQuery {
		return nil, unsupportedSource(cfg)
	}

	table := cfg.BigQueryTable
	if table == "" {
		table = cfg.Table
	}

	return OpenBigQuery(ctx, cfg.BigQueryProjectID, cfg.BigQueryDataset, table)
}

//go:build !gcloud

package engagement

import (
	"context"

	"github.com/sngor/bayon-coagent-sub013/internal/config"
)

func openPlatformSource(_ context.Context, cfg *config.EngagementConfig) (Source, error) {
	return nil, unsupportedSource(cfg)
}

package logging

import (
	"log/slog"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

// CohortLogger scopes base to one cohort of one batch run.
func CohortLogger(base *slog.Logger, runID string, key domain.CohortKey) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With(
		slog.String("run_id", runID),
		slog.String("user_id", key.UserID),
		slog.String("channel", key.Channel.String()),
		slog.String("content_type", key.ContentType),
	)
}

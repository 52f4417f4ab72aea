package engagement

import (
	"context"
	"fmt"

	"github.com/sngor/bayon-coagent-sub013/internal/config"
	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

// Source is an engagement repository that owns a connection.
type Source interface {
	domain.EngagementRepository
	Close() error
}

type httpSource struct {
	*Client
}

func (httpSource) Close() error { return nil }

// Open builds the configured engagement source.
func Open(ctx context.Context, cfg *config.EngagementConfig) (Source, error) {
	switch cfg.Source {
	case config.EngagementSourcePostgres:
		return OpenPostgres(ctx, cfg.PostgresDSN, cfg.Table)
	case config.EngagementSourceDuckDB:
		return OpenDuckDB(ctx, cfg.DuckDBPath, cfg.DuckDBImport, cfg.Table)
	case config.EngagementSourceHTTP:
		return httpSource{Client: NewClient(cfg.HTTPURL)}, nil
	default:
		return openPlatformSource(ctx, cfg)
	}
}

func unsupportedSource(cfg *config.EngagementConfig) error {
	return fmt.Errorf("%w: %q", config.ErrUnknownEngagementSource, cfg.Source)
}

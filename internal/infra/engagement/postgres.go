package engagement

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

const sourcePostgres = "postgres"

func OpenPostgres(ctx context.Context, dsn, table string) (*SQLRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: postgres ping: %w", ErrSourceUnavailable, err)
	}

	repo, err := newSQLRepository(db, table, sourcePostgres)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "engagement source connected",
		slog.String("source", sourcePostgres),
		slog.String("table", table),
	)

	return repo, nil
}

package engagement

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"slices"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
	"github.com/sngor/bayon-coagent-sub013/internal/observability/tracing"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLRepository reads engagement samples from a table with the columns
// user_id, channel, content_type, published_at, engagement_rate and source_id.
// Postgres and DuckDB both accept $n placeholders, so one query serves both.
type SQLRepository struct {
	db     *sql.DB
	table  string
	source string
}

func newSQLRepository(db *sql.DB, table, source string) (*SQLRepository, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return &SQLRepository{db: db, table: table, source: source}, nil
}

func (r *SQLRepository) QuerySamples(ctx context.Context, query domain.SampleQuery) ([]domain.EngagementSample, error) {
	ctx, span := tracing.StartSourceQuerySpan(ctx, r.source, "query_samples")
	defer span.End()

	// Newest first so LIMIT keeps the most recent records.
	stmt := fmt.Sprintf(`SELECT content_type, published_at, engagement_rate, source_id
FROM %s
WHERE user_id = $1 AND channel = $2 AND content_type = $3 AND published_at >= $4
ORDER BY published_at DESC
LIMIT $5`, r.table)

	rows, err := r.db.QueryContext(ctx, stmt,
		query.UserID, query.Channel.String(), query.ContentType, query.Since, query.Limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: query samples: %w", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	samples := make([]domain.EngagementSample, 0, query.Limit)
	for rows.Next() {
		var (
			s        domain.EngagementSample
			sourceID sql.NullString
		)
		if err := rows.Scan(&s.ContentType, &s.PublishedAt, &s.EngagementRate, &sourceID); err != nil {
			return nil, fmt.Errorf("failed to scan engagement sample: %w", err)
		}
		s.Channel = query.Channel
		s.PublishedAt = s.PublishedAt.UTC()
		s.SourceID = sourceID.String
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w: rate %v for %q", ErrInvalidResponse, err, s.EngagementRate, s.SourceID)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: read samples: %w", ErrSourceUnavailable, err)
	}

	slices.Reverse(samples)

	return samples, nil
}

func (r *SQLRepository) ListUserIDs(ctx context.Context, limit int) ([]string, error) {
	ctx, span := tracing.StartSourceQuerySpan(ctx, r.source, "list_users")
	defer span.End()

	stmt := fmt.Sprintf(`SELECT DISTINCT user_id FROM %s ORDER BY user_id LIMIT $1`, r.table)

	rows, err := r.db.QueryContext(ctx, stmt, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: list users: %w", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: read users: %w", ErrSourceUnavailable, err)
	}

	return userIDs, nil
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}

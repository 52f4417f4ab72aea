//go:build gcloud

package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
	"github.com/sngor/bayon-coagent-sub013/internal/observability/tracing"
)

const sourceBigQuery = "bigquery"

type sampleRow struct {
	ContentType    string              `bigquery:"content_type"`
	PublishedAt    time.Time           `bigquery:"published_at"`
	EngagementRate float64             `bigquery:"engagement_rate"`
	SourceID       bigquery.NullString `bigquery:"source_id"`
}

type userRow struct {
	UserID string `bigquery:"user_id"`
}

// BigQueryRepository reads engagement samples from a BigQuery table.
type BigQueryRepository struct {
	client *bigquery.Client
	table  string
}

func OpenBigQuery(ctx context.Context, projectID, dataset, table string) (*BigQueryRepository, error) {
	if !tableNamePattern.MatchString(dataset) || !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %s.%s", ErrInvalidTable, dataset, table)
	}

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}

	slog.InfoContext(ctx, "engagement source connected",
		slog.String("source", sourceBigQuery),
		slog.String("project_id", projectID),
		slog.String("dataset", dataset),
		slog.String("table", table),
	)

	return &BigQueryRepository{
		client: client,
		table:  fmt.Sprintf("`%s.%s.%s`", projectID, dataset, table),
	}, nil
}

func (r *BigQueryRepository) QuerySamples(ctx context.Context, query domain.SampleQuery) ([]domain.EngagementSample, error) {
	ctx, span := tracing.StartSourceQuerySpan(ctx, sourceBigQuery, "query_samples")
	defer span.End()

	q := r.client.Query(fmt.Sprintf(`SELECT content_type, published_at, engagement_rate, source_id
FROM %s
WHERE user_id = @user_id AND channel = @channel AND content_type = @content_type AND published_at >= @since
ORDER BY published_at DESC
LIMIT @limit`, r.table))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: query.UserID},
		{Name: "channel", Value: query.Channel.String()},
		{Name: "content_type", Value: query.ContentType},
		{Name: "since", Value: query.Since},
		{Name: "limit", Value: int64(query.Limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: query samples: %w", ErrSourceUnavailable, err)
	}

	samples := make([]domain.EngagementSample, 0, query.Limit)
	for {
		var row sampleRow
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%w: read samples: %w", ErrSourceUnavailable, err)
		}
		s := domain.EngagementSample{
			Channel:        query.Channel,
			ContentType:    row.ContentType,
			PublishedAt:    row.PublishedAt.UTC(),
			EngagementRate: row.EngagementRate,
			SourceID:       row.SourceID.StringVal,
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w: rate %v for %q", ErrInvalidResponse, err, s.EngagementRate, s.SourceID)
		}
		samples = append(samples, s)
	}

	slices.Reverse(samples)

	return samples, nil
}

func (r *BigQueryRepository) ListUserIDs(ctx context.Context, limit int) ([]string, error) {
	ctx, span := tracing.StartSourceQuerySpan(ctx, sourceBigQuery, "list_users")
	defer span.End()

	q := r.client.Query(fmt.Sprintf(`SELECT DISTINCT user_id FROM %s ORDER BY user_id LIMIT @limit`, r.table))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: list users: %w", ErrSourceUnavailable, err)
	}

	var userIDs []string
	for {
		var row userRow
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%w: read users: %w", ErrSourceUnavailable, err)
		}
		userIDs = append(userIDs, row.UserID)
	}

	return userIDs, nil
}

func (r *BigQueryRepository) Close() error {
	return r.client.Close()
}

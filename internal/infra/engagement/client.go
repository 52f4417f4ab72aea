package engagement

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
	"github.com/sngor/bayon-coagent-sub013/internal/observability/logging"
	"github.com/sngor/bayon-coagent-sub013/internal/observability/tracing"
)

const sourceHTTP = "http"

type sampleResponse struct {
	ContentType    string    `json:"content_type"`
	PublishedAt    time.Time `json:"published_at"`
	EngagementRate float64   `json:"engagement_rate"`
	SourceID       string    `json:"source_id"`
}

type samplesResponse struct {
	Samples []sampleResponse `json:"samples"`
	Count   int              `json:"count"`
}

type usersResponse struct {
	UserIDs []string `json:"user_ids"`
}

// Client reads engagement history from the analytics service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: newHTTPClient(baseURL),
	}
}

func (c *Client) QuerySamples(ctx context.Context, query domain.SampleQuery) ([]domain.EngagementSample, error) {
	ctx, span := tracing.StartSourceQuerySpan(ctx, sourceHTTP, "query_samples")
	defer span.End()

	q := url.Values{}
	q.Set("user_id", query.UserID)
	q.Set("channel", query.Channel.String())
	q.Set("content_type", query.ContentType)
	q.Set("since", query.Since.UTC().Format(time.RFC3339))
	q.Set("limit", strconv.Itoa(query.Limit))

	var resp samplesResponse
	if err := c.get(ctx, "/api/v1/engagement/samples", q, &resp); err != nil {
		span.RecordError(err)
		return nil, err
	}

	samples := make([]domain.EngagementSample, 0, len(resp.Samples))
	for _, s := range resp.Samples {
		sample := domain.EngagementSample{
			Channel:        query.Channel,
			ContentType:    s.ContentType,
			PublishedAt:    s.PublishedAt.UTC(),
			EngagementRate: s.EngagementRate,
			SourceID:       s.SourceID,
		}
		if err := sample.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w: rate %v for %q", ErrInvalidResponse, err, s.EngagementRate, s.SourceID)
		}
		if sample.PublishedAt.Before(query.Since) {
			continue
		}
		samples = append(samples, sample)
	}

	slices.SortStableFunc(samples, func(a, b domain.EngagementSample) int {
		return a.PublishedAt.Compare(b.PublishedAt)
	})
	if query.Limit > 0 && len(samples) > query.Limit {
		samples = samples[len(samples)-query.Limit:]
	}

	slog.DebugContext(ctx, "fetched engagement samples",
		slog.String("user_id", query.UserID),
		slog.String("channel", query.Channel.String()),
		slog.String("content_type", query.ContentType),
		slog.Int("count", len(samples)),
	)

	return samples, nil
}

func (c *Client) ListUserIDs(ctx context.Context, limit int) ([]string, error) {
	ctx, span := tracing.StartSourceQuerySpan(ctx, sourceHTTP, "list_users")
	defer span.End()

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var resp usersResponse
	if err := c.get(ctx, "/api/v1/engagement/users", q, &resp); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if len(resp.UserIDs) > limit {
		resp.UserIDs = resp.UserIDs[:limit]
	}

	return resp.UserIDs, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}

	u.Path = path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	requestID := logging.ValidateAndExtractRequestID(logging.RequestIDFromContext(ctx))
	req.Header.Set("x-request-id", requestID)
	tracing.InjectToHTTPRequest(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send request to engagement service",
			slog.String("url", u.String()),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.ErrorContext(ctx, "unexpected status code from engagement service",
			slog.String("url", u.String()),
			slog.Int("status_code", resp.StatusCode),
		)
		return fmt.Errorf("%w: unexpected status code: %d", ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	return nil
}

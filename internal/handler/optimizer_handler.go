package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
	"github.com/sngor/bayon-coagent-sub013/internal/service/batch"
	"github.com/sngor/bayon-coagent-sub013/internal/service/cache"
	"github.com/sngor/bayon-coagent-sub013/internal/service/fallback"
)

const (
	runIDHeader = "X-Run-ID"

	sourceCache    = "cache"
	sourceFallback = "fallback"
)

// BatchRunner runs one optimizer batch from a raw trigger payload.
type BatchRunner interface {
	RunPayload(ctx context.Context, runID string, payload []byte) *batch.Summary
}

type OptimalTimesResponse struct {
	CohortKey     domain.CohortKey           `json:"cohort_key"`
	Source        string                     `json:"source"`
	Valid         bool                       `json:"valid"`
	Results       []domain.OptimalTimeResult `json:"results"`
	CalculatedAt  *time.Time                 `json:"calculated_at,omitempty"`
	ExpiresAt     *time.Time                 `json:"expires_at,omitempty"`
	DataFreshness *domain.DataFreshness      `json:"data_freshness,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type OptimizerHandler struct {
	runner BatchRunner
	cache  *cache.Manager
	now    func() time.Time
}

func NewOptimizerHandler(runner BatchRunner, cacheManager *cache.Manager, now func() time.Time) *OptimizerHandler {
	if now == nil {
		now = time.Now
	}
	return &OptimizerHandler{
		runner: runner,
		cache:  cacheManager,
		now:    now,
	}
}

// HandleBatch runs a batch synchronously. A trigger that fails to parse or
// validate is answered with 400 and a fatal summary; anything else is 200,
// cohort failures included.
func (h *OptimizerHandler) HandleBatch(c *gin.Context) {
	ctx := c.Request.Context()

	runID := c.GetHeader(runIDHeader)
	if runID == "" {
		runID = uuid.NewString()
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read request body", slog.String("error", err.Error()))
		respondError(c, http.StatusBadRequest, "read_error", "failed to read request body")
		return
	}

	slog.InfoContext(ctx, "handling optimizer batch request",
		slog.String("run_id", runID),
		slog.Int("payload_bytes", len(body)),
	)

	summary := h.runner.RunPayload(ctx, runID, body)

	c.Header(runIDHeader, runID)
	if summary.IsFatal() {
		c.JSON(http.StatusBadRequest, summary)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// HandleGetOptimalTimes serves the cached recommendation for one cohort, or
// the channel defaults when nothing is cached.
func (h *OptimizerHandler) HandleGetOptimalTimes(c *gin.Context) {
	ctx := c.Request.Context()

	channel, err := domain.ParseChannel(c.Param("channel"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	key := domain.NewCohortKey(c.Param("userId"), channel, c.Param("contentType"))
	if err := key.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	entry, valid, err := h.cache.Lookup(ctx, key)
	if err != nil {
		slog.ErrorContext(ctx, "failed to look up optimal times",
			slog.String("cohort", key.String()),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusServiceUnavailable, "cache_error", "cache unavailable")
		return
	}

	if entry != nil {
		c.JSON(http.StatusOK, OptimalTimesResponse{
			CohortKey:     key,
			Source:        sourceCache,
			Valid:         valid,
			Results:       entry.Results,
			CalculatedAt:  &entry.CalculatedAt,
			ExpiresAt:     &entry.ExpiresAt,
			DataFreshness: &entry.DataFreshness,
		})
		return
	}

	results, err := fallback.Results(channel, h.now())
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	c.JSON(http.StatusOK, OptimalTimesResponse{
		CohortKey: key,
		Source:    sourceFallback,
		Valid:     false,
		Results:   results,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Error:   code,
		Message: message,
	})
}

package stub

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler serves synthetic engagement history in the shape the optimizer's
// HTTP engagement source expects.
type Handler struct {
	storage *CohortStorage
}

func NewHandler(storage *CohortStorage) *Handler {
	return &Handler{storage: storage}
}

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.POST("/stub/reset", h.HandleReset)
	r.POST("/stub/seed", h.HandleSeed)
	r.GET("/api/v1/engagement/samples", h.HandleGetSamples)
	r.GET("/api/v1/engagement/users", h.HandleGetUsers)
	return r
}

func (h *Handler) HandleReset(c *gin.Context) {
	runID := c.DefaultQuery("run_id", "default")

	h.storage.Reset(runID)

	slog.Info("reset data", slog.String("run_id", runID))

	c.JSON(http.StatusOK, gin.H{
		"status": "reset complete",
		"run_id": runID,
	})
}

func (h *Handler) HandleSeed(c *gin.Context) {
	runID := c.DefaultQuery("run_id", "default")

	var req SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	totalCount := 0
	for _, sc := range req.Cohorts {
		startTime, err := time.Parse(time.RFC3339, sc.StartTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_time: " + sc.StartTime})
			return
		}
		endTime, err := time.Parse(time.RFC3339, sc.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_time: " + sc.EndTime})
			return
		}

		contentType := sc.ContentType
		if contentType == "" {
			contentType = "blog_post"
		}

		h.storage.AddCohort(runID, &Cohort{
			UserID:      sc.UserID,
			Channel:     sc.Channel,
			ContentType: contentType,
			StartTime:   startTime,
			EndTime:     endTime,
			Count:       sc.Count,
			PeakDay:     time.Weekday(sc.PeakDay),
			PeakHour:    sc.PeakHour,
			BaseRate:    sc.BaseRate,
			PeakRate:    sc.PeakRate,
		})

		totalCount += sc.Count
	}

	slog.Info("seeded data",
		slog.String("run_id", runID),
		slog.Int("cohort_count", len(req.Cohorts)),
		slog.Int("total_sample_count", totalCount),
	)

	c.JSON(http.StatusOK, gin.H{
		"status":       "seeded",
		"run_id":       runID,
		"cohort_count": len(req.Cohorts),
		"total_count":  totalCount,
	})
}

// GET /api/v1/engagement/samples?user_id=...&channel=...&content_type=...&since=...&limit=...
func (h *Handler) HandleGetSamples(c *gin.Context) {
	runID := c.DefaultQuery("run_id", "default")
	userID := c.Query("user_id")
	channel := c.Query("channel")
	contentType := c.Query("content_type")

	if userID == "" || channel == "" || contentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id, channel and content_type are required"})
		return
	}

	var since time.Time
	if sinceStr := c.Query("since"); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since time format"})
			return
		}
		since = parsed
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	samples := h.storage.Samples(runID, userID, channel, contentType, since, limit)

	slog.Debug("get samples",
		slog.String("run_id", runID),
		slog.String("user_id", userID),
		slog.String("channel", channel),
		slog.Int("count", len(samples)),
	)

	c.JSON(http.StatusOK, SamplesResponse{
		Samples: samples,
		Count:   len(samples),
	})
}

// GET /api/v1/engagement/users?limit=...
func (h *Handler) HandleGetUsers(c *gin.Context) {
	runID := c.DefaultQuery("run_id", "default")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	c.JSON(http.StatusOK, UsersResponse{UserIDs: h.storage.UserIDs(runID, limit)})
}

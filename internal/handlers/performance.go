package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/civilink/civilink-backend/internal/clients/redis"
	"github.com/civilink/civilink-backend/internal/jobs"
	"github.com/civilink/civilink-backend/internal/logger"
	"github.com/civilink/civilink-backend/internal/services"
)

type PerformanceHandler struct {
	log         *logger.Logger
	performance services.PerformanceService
	refreshJob  *jobs.AnalyticsJob
	cache       redis.ReportCache
}

func NewPerformanceHandler(log *logger.Logger, performance services.PerformanceService, refreshJob *jobs.AnalyticsJob, cache redis.ReportCache) *PerformanceHandler {
	return &PerformanceHandler{
		log:         log.With("handler", "PerformanceHandler"),
		performance: performance,
		refreshJob:  refreshJob,
		cache:       cache,
	}
}

func (ph *PerformanceHandler) GetAggregatedPerformance(c *gin.Context) {
	ctx := c.Request.Context()
	cacheKey := "aggregated?" + c.Request.URL.RawQuery
	if ph.cache != nil {
		if raw, ok, err := ph.cache.Get(ctx, cacheKey); err == nil && ok {
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
	}

	filter := services.PerformanceFilter{
		From:       c.Query("from"),
		To:         c.Query("to"),
		Department: c.Query("department"),
		Subcity:    c.Query("subcity"),
	}
	if raw := c.Query("officerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid officerId"})
			return
		}
		filter.OfficerID = &id
	}

	report, err := ph.performance.GetAggregatedPerformance(ctx, filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if ph.cache != nil {
		if payload, err := json.Marshal(report); err == nil {
			if err := ph.cache.Set(ctx, cacheKey, payload); err != nil {
				ph.log.Warn("Report cache write failed", "error", err)
			}
		}
	}
	c.JSON(http.StatusOK, report)
}

func (ph *PerformanceHandler) GetPaginatedOfficerStats(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := ph.performance.GetPaginatedOfficerStats(c.Request.Context(), services.OfficerStatsFilter{
		From:       c.Query("from"),
		To:         c.Query("to"),
		Department: c.Query("department"),
		Subcity:    c.Query("subcity"),
		Search:     c.Query("search"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// TriggerRefresh kicks off an analytics refresh outside the schedule. The
// refresh runs in the background; the caller polls the report endpoints.
func (ph *PerformanceHandler) TriggerRefresh(c *gin.Context) {
	go ph.refreshJob.RunOnce(context.Background())
	c.JSON(http.StatusAccepted, gin.H{"status": "refresh started"})
}

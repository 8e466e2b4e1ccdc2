package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/visits-backend-go/internal/middleware"
	"github.com/jengzang/visits-backend-go/internal/service"
	"github.com/jengzang/visits-backend-go/pkg/response"
)

// StatsHandler handles HTTP requests for visit statistics
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStatistics handles GET /api/visits/stats
func (h *StatsHandler) GetStatistics(c *gin.Context) {
	summary, rs, err := h.statsService.GetStatistics()
	if err != nil {
		response.FromError(c, err)
		return
	}
	if middleware.NotModified(c, middleware.ETag(rs.ID, "stats")) {
		return
	}
	c.JSON(200, summary)
}

// GetDailyCounts handles GET /api/visits/daily
func (h *StatsHandler) GetDailyCounts(c *gin.Context) {
	days, rs, err := h.statsService.GetDailyCounts()
	if err != nil {
		response.FromError(c, err)
		return
	}
	if middleware.NotModified(c, middleware.ETag(rs.ID, "daily")) {
		return
	}
	response.List(c, days, len(days))
}

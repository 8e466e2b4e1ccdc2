package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/visits-backend-go/internal/config"
	"github.com/jengzang/visits-backend-go/internal/ingest"
	"github.com/jengzang/visits-backend-go/internal/service"
	"github.com/jengzang/visits-backend-go/pkg/response"
)

// SystemHandler serves service metadata and source inspection
type SystemHandler struct {
	cfg          *config.Config
	visitService *service.VisitService
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(cfg *config.Config, visitService *service.VisitService) *SystemHandler {
	return &SystemHandler{
		cfg:          cfg,
		visitService: visitService,
	}
}

// Root handles GET /
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":     h.cfg.App.Name + " is running",
		"version":     h.cfg.App.Version,
		"data_source": h.cfg.Data.FilePath,
	})
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

// GetConfig handles GET /api/config. Only non-sensitive settings are exposed.
func (h *SystemHandler) GetConfig(c *gin.Context) {
	response.Success(c, gin.H{
		"max_records_per_request": h.cfg.Query.MaxRecordsPerRequest,
		"cache_enabled":           h.cfg.Cache.Enabled,
		"cache_ttl_seconds":       int(h.cfg.Cache.TTL.Seconds()),
		"allowed_origins":         h.cfg.CORS.AllowedOrigins,
		"business_days":           h.cfg.Data.BusinessDaysPath != "",
	})
}

// GetStructure handles GET /api/structure
func (h *SystemHandler) GetStructure(c *gin.Context) {
	structure, err := h.visitService.GetStructure(c.Request.Context(), ingest.DefaultSampleRows)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, structure)
}

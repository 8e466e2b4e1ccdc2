package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/visits-backend-go/internal/middleware"
	"github.com/jengzang/visits-backend-go/internal/service"
	"github.com/jengzang/visits-backend-go/pkg/response"
)

// VisitHandler handles HTTP requests for visit records
type VisitHandler struct {
	visitService *service.VisitService
}

// NewVisitHandler creates a new visit handler
func NewVisitHandler(visitService *service.VisitService) *VisitHandler {
	return &VisitHandler{
		visitService: visitService,
	}
}

// GetVisits handles GET /api/visits
func (h *VisitHandler) GetVisits(c *gin.Context) {
	var q VisitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		response.FromError(c, err)
		return
	}

	result, rs, err := h.visitService.GetVisits(filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if middleware.NotModified(c, middleware.ETag(rs.ID, c.Request.URL.RawQuery)) {
		return
	}

	setLinkHeaders(c, result.Offset, result.Limit, result.Total)
	response.List(c, result.Items, result.Total)
}

// GetVisitByID handles GET /api/visits/:id
func (h *VisitHandler) GetVisitByID(c *gin.Context) {
	idx, err := parseIndex(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	record, rs, err := h.visitService.GetVisitByIndex(idx)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if middleware.NotModified(c, middleware.ETag(rs.ID, c.Param("id"))) {
		return
	}

	response.Success(c, record)
}

// GetPlaces handles GET /api/places
func (h *VisitHandler) GetPlaces(c *gin.Context) {
	places, rs, err := h.visitService.GetPlaces()
	if err != nil {
		response.FromError(c, err)
		return
	}
	if middleware.NotModified(c, middleware.ETag(rs.ID, "places")) {
		return
	}

	c.JSON(200, gin.H{
		"success": true,
		"places":  places,
		"count":   len(places),
	})
}

// GetLoadReport handles GET /api/ingest/report
func (h *VisitHandler) GetLoadReport(c *gin.Context) {
	report, err := h.visitService.GetLoadReport()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, report)
}

// Reload handles POST /api/reload
func (h *VisitHandler) Reload(c *gin.Context) {
	rs, err := h.visitService.Reload(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, rs)
}

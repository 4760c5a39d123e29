package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/service"
	"github.com/jengzang/travel-atlas-go/pkg/response"
)

// RegionHandler handles HTTP requests for regions
type RegionHandler struct {
	service *service.RegionService
}

// NewRegionHandler creates a new region handler
func NewRegionHandler(service *service.RegionService) *RegionHandler {
	return &RegionHandler{service: service}
}

// ListRegions handles GET /api/v1/regions
func (h *RegionHandler) ListRegions(c *gin.Context) {
	regions, err := h.service.ListRegions(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "Failed to get regions")
		return
	}
	response.Success(c, regions)
}

// GetRegion handles GET /api/v1/regions/:id
func (h *RegionHandler) GetRegion(c *gin.Context) {
	region, err := h.service.GetRegion(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err, "Failed to get region")
		return
	}
	response.Success(c, region)
}

// GetSummary handles GET /api/v1/regions/:id/summary
func (h *RegionHandler) GetSummary(c *gin.Context) {
	summary, err := h.service.GetSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err, "Failed to get region summary")
		return
	}
	response.Success(c, summary)
}

// Locate handles GET /api/v1/regions/locate
func (h *RegionHandler) Locate(c *gin.Context) {
	var filter models.LocateFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	region, err := h.service.Locate(c.Request.Context(), filter.Lat, filter.Lng)
	if err != nil {
		response.FromError(c, err, "Failed to locate region")
		return
	}
	response.Success(c, region)
}

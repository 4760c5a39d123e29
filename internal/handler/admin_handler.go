package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
	"github.com/jengzang/travel-atlas-go/internal/mapdata"
	"github.com/jengzang/travel-atlas-go/internal/middleware"
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/service"
	"github.com/jengzang/travel-atlas-go/pkg/response"
)

// AdminHandler handles the admin console API
type AdminHandler struct {
	regions *service.RegionService
	pois    *service.POIService
	maps    *mapdata.Service
	log     *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(regions *service.RegionService, pois *service.POIService, maps *mapdata.Service, log *zap.Logger) *AdminHandler {
	return &AdminHandler{regions: regions, pois: pois, maps: maps, log: log.Named("admin")}
}

// CreateRegion handles POST /api/v1/admin/regions
func (h *AdminHandler) CreateRegion(c *gin.Context) {
	var region models.Region
	if err := c.ShouldBindJSON(&region); err != nil {
		response.BadRequest(c, "Invalid region", err)
		return
	}
	region.Months = nil

	if err := h.regions.CreateRegion(c.Request.Context(), &region); err != nil {
		response.FromError(c, err, "Failed to create region")
		return
	}
	response.Created(c, &region)
}

// UpsertRegion handles PUT /api/v1/admin/regions/:id
func (h *AdminHandler) UpsertRegion(c *gin.Context) {
	var region models.Region
	if err := c.ShouldBindJSON(&region); err != nil {
		response.BadRequest(c, "Invalid region", err)
		return
	}
	region.Months = nil

	if err := h.regions.UpsertRegion(c.Request.Context(), c.Param("id"), &region); err != nil {
		response.FromError(c, err, "Failed to save region")
		return
	}
	response.Success(c, &region)
}

// DeleteRegion handles DELETE /api/v1/admin/regions/:id
func (h *AdminHandler) DeleteRegion(c *gin.Context) {
	if err := h.regions.DeleteRegion(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err, "Failed to delete region")
		return
	}
	response.Success(c, gin.H{"id": c.Param("id")})
}

// UpsertMonthly handles PUT /api/v1/admin/regions/:id/months/:month
func (h *AdminHandler) UpsertMonthly(c *gin.Context) {
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		response.FromError(c, apperror.Invalid("month", "must be a number"), "Invalid month")
		return
	}

	var metric models.MonthlyMetric
	if err := c.ShouldBindJSON(&metric); err != nil {
		response.BadRequest(c, "Invalid monthly data", err)
		return
	}

	row, err := h.regions.UpsertMonthly(c.Request.Context(), c.Param("id"), month, metric)
	if err != nil {
		response.FromError(c, err, "Failed to save monthly data")
		return
	}
	response.Success(c, row)
}

// CreatePOI handles POST /api/v1/admin/pois
func (h *AdminHandler) CreatePOI(c *gin.Context) {
	var poi models.POI
	if err := c.ShouldBindJSON(&poi); err != nil {
		response.BadRequest(c, "Invalid POI", err)
		return
	}

	if err := h.pois.CreatePOI(c.Request.Context(), &poi); err != nil {
		response.FromError(c, err, "Failed to create POI")
		return
	}
	response.Created(c, &poi)
}

// UpsertPOI handles PUT /api/v1/admin/pois/:id
func (h *AdminHandler) UpsertPOI(c *gin.Context) {
	var poi models.POI
	if err := c.ShouldBindJSON(&poi); err != nil {
		response.BadRequest(c, "Invalid POI", err)
		return
	}

	if err := h.pois.UpsertPOI(c.Request.Context(), c.Param("id"), &poi); err != nil {
		response.FromError(c, err, "Failed to save POI")
		return
	}
	response.Success(c, &poi)
}

// DeletePOI handles DELETE /api/v1/admin/pois/:id
func (h *AdminHandler) DeletePOI(c *gin.Context) {
	if err := h.pois.DeletePOI(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err, "Failed to delete POI")
		return
	}
	response.Success(c, gin.H{"id": c.Param("id")})
}

// InvalidateCache handles POST /api/v1/admin/cache/invalidate
func (h *AdminHandler) InvalidateCache(c *gin.Context) {
	h.maps.Invalidate()
	h.log.Info("map caches invalidated", zap.String("user_id", middleware.UserID(c)))
	response.Success(c, gin.H{"invalidated": true})
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/travel-atlas-go/internal/mapdata"
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/service"
	"github.com/jengzang/travel-atlas-go/pkg/response"
)

// POIHandler handles HTTP requests for points of interest
type POIHandler struct {
	service *service.POIService
}

// NewPOIHandler creates a new POI handler
func NewPOIHandler(service *service.POIService) *POIHandler {
	return &POIHandler{service: service}
}

// GetPOI handles GET /api/v1/pois/:id. With ?locale= the localized fields
// are resolved; without it every translation is returned.
func (h *POIHandler) GetPOI(c *gin.Context) {
	poi, err := h.service.GetPOI(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err, "Failed to get POI")
		return
	}
	if locale := c.Query("locale"); locale != "" {
		response.Success(c, mapdata.ResolvePOI(poi, models.ParseLocale(locale)))
		return
	}
	response.Success(c, poi)
}

// Nearby handles GET /api/v1/pois/nearby
func (h *POIHandler) Nearby(c *gin.Context) {
	var filter models.NearbyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	pois, err := h.service.Nearby(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err, "Failed to search nearby POIs")
		return
	}
	response.Success(c, gin.H{
		"data":  pois,
		"total": len(pois),
	})
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/travel-atlas-go/internal/mapdata"
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/scoring"
	"github.com/jengzang/travel-atlas-go/pkg/response"
)

// MapHandler handles HTTP requests for map viewports
type MapHandler struct {
	maps *mapdata.Service
	now  func() time.Time
}

// NewMapHandler creates a new map handler
func NewMapHandler(maps *mapdata.Service) *MapHandler {
	return &MapHandler{maps: maps, now: time.Now}
}

// GetMap handles GET /api/v1/map
func (h *MapHandler) GetMap(c *gin.Context) {
	var filter models.MapFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	opts, err := renderOptions(filter.Month, filter.Mode, filter.Locale, h.now())
	if err != nil {
		response.FromError(c, err, "Invalid query parameters")
		return
	}

	bounds, err := viewportBounds(filter)
	if err != nil {
		response.FromError(c, err, "Invalid viewport")
		return
	}

	data, err := h.maps.Load(c.Request.Context(), bounds)
	if err != nil {
		response.FromError(c, err, "Failed to load map data")
		return
	}

	response.Success(c, mapdata.Render(data, opts))
}

// GetLegend handles GET /api/v1/map/legend
func (h *MapHandler) GetLegend(c *gin.Context) {
	mode, ok := scoring.ParseViewMode(c.Query("mode"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "Invalid view mode", nil)
		return
	}
	response.Success(c, gin.H{
		"mode":   mode,
		"legend": scoring.Legend(mode),
	})
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/travel-atlas-go/internal/middleware"
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/service"
	"github.com/jengzang/travel-atlas-go/pkg/response"
)

// TripHandler handles HTTP requests for trips
type TripHandler struct {
	service *service.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(service *service.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// CreateTrip handles POST /api/v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var in models.TripInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "Invalid trip", err)
		return
	}

	trip, err := h.service.CreateTrip(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		response.FromError(c, err, "Failed to create trip")
		return
	}
	response.Created(c, trip)
}

// GetTrips handles GET /api/v1/trips
func (h *TripHandler) GetTrips(c *gin.Context) {
	var filter models.TripFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	trips, err := h.service.GetTrips(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		response.FromError(c, err, "Failed to get trips")
		return
	}
	response.Success(c, trips)
}

// DeleteTrip handles DELETE /api/v1/trips/:id
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	if err := h.service.DeleteTrip(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.FromError(c, err, "Failed to delete trip")
		return
	}
	response.Success(c, gin.H{"id": c.Param("id")})
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/travel-atlas-go/internal/middleware"
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/service"
	"github.com/jengzang/travel-atlas-go/pkg/response"
)

// ReviewHandler handles HTTP requests for POI reviews
type ReviewHandler struct {
	service *service.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// CreateReview handles POST /api/v1/pois/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var in models.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "Invalid review", err)
		return
	}

	review, err := h.service.CreateReview(c.Request.Context(), middleware.UserID(c), c.Param("id"), in)
	if err != nil {
		response.FromError(c, err, "Failed to create review")
		return
	}
	response.Created(c, review)
}

// ListReviews handles GET /api/v1/pois/:id/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	list, err := h.service.ListReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err, "Failed to get reviews")
		return
	}
	response.Success(c, list)
}

package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/repository"
)

// ReviewService handles business logic for POI reviews
type ReviewService struct {
	repo *repository.ReviewRepository
	pois *repository.POIRepository
	now  func() time.Time
}

// NewReviewService creates a new review service
func NewReviewService(repo *repository.ReviewRepository, pois *repository.POIRepository) *ReviewService {
	return &ReviewService{repo: repo, pois: pois, now: time.Now}
}

// CreateReview stores userID's review of a POI
func (s *ReviewService) CreateReview(ctx context.Context, userID, poiID string, in models.ReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperror.Invalid("rating", "must be between 1 and 5")
	}
	if _, err := s.pois.GetPOI(ctx, poiID); err != nil {
		return nil, backendUnlessClassified("get poi", err)
	}

	review := &models.Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		POIID:     poiID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, backendUnlessClassified("create review", err)
	}
	return review, nil
}

// ListReviews returns a POI's reviews with their average rating
func (s *ReviewService) ListReviews(ctx context.Context, poiID string) (*models.ReviewList, error) {
	if _, err := s.pois.GetPOI(ctx, poiID); err != nil {
		return nil, backendUnlessClassified("get poi", err)
	}
	reviews, err := s.repo.ListReviews(ctx, poiID)
	if err != nil {
		return nil, apperror.Backend("list reviews", err)
	}

	list := &models.ReviewList{POIID: poiID, Reviews: reviews, Count: len(reviews)}
	if len(reviews) > 0 {
		sum := 0
		for _, rv := range reviews {
			sum += rv.Rating
		}
		list.AverageRating = math.Round(float64(sum)/float64(len(reviews))*100) / 100
	}
	return list, nil
}

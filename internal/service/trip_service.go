package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
	"github.com/jengzang/travel-atlas-go/internal/mapdata"
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/repository"
)

// TripService handles business logic for trips
type TripService struct {
	repo *repository.TripRepository
	maps *mapdata.Service
	now  func() time.Time
}

// NewTripService creates a new trip service
func NewTripService(repo *repository.TripRepository, maps *mapdata.Service) *TripService {
	return &TripService{repo: repo, maps: maps, now: time.Now}
}

// CreateTrip validates and stores a trip for userID
func (s *TripService) CreateTrip(ctx context.Context, userID string, in models.TripInput) (*models.Trip, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperror.Invalid("title", "is required")
	}
	start, err := time.Parse(models.DateLayout, in.StartDate)
	if err != nil {
		return nil, apperror.Invalid("startDate", "must be YYYY-MM-DD")
	}
	end, err := time.Parse(models.DateLayout, in.EndDate)
	if err != nil {
		return nil, apperror.Invalid("endDate", "must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, apperror.Invalid("endDate", "must not be before startDate")
	}

	ref, err := s.maps.Reference(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := ref.Region(in.RegionID); !ok {
		return nil, apperror.Invalid("regionId", "is not a known region")
	}

	trip := &models.Trip{
		ID:        uuid.NewString(),
		UserID:    userID,
		RegionID:  in.RegionID,
		POIID:     in.POIID,
		Title:     strings.TrimSpace(in.Title),
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Notes:     in.Notes,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.repo.CreateTrip(ctx, trip); err != nil {
		return nil, apperror.Backend("create trip", err)
	}
	return trip, nil
}

// GetTrips retrieves a user's trips with filtering and pagination
func (s *TripService) GetTrips(ctx context.Context, userID string, filter models.TripFilter) (*models.TripsResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}

	trips, total, err := s.repo.GetTrips(ctx, userID, filter)
	if err != nil {
		return nil, apperror.Backend("list trips", err)
	}

	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	return &models.TripsResponse{
		Data:       trips,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// DeleteTrip removes one of the user's trips
func (s *TripService) DeleteTrip(ctx context.Context, userID, id string) error {
	return backendUnlessClassified("delete trip", s.repo.DeleteTrip(ctx, userID, id))
}

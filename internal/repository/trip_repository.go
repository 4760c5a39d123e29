package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
	"github.com/jengzang/travel-atlas-go/internal/models"
)

// TripRepository handles database operations for trips
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

// CreateTrip inserts a trip
func (r *TripRepository) CreateTrip(ctx context.Context, trip *models.Trip) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO trips
		(id, user_id, region_id, poi_id, title, start_date, end_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		trip.ID, trip.UserID, trip.RegionID, trip.POIID, trip.Title,
		trip.StartDate, trip.EndDate, trip.Notes, formatTimestamp(trip.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	return nil
}

// GetTrips retrieves a user's trips with filtering and pagination
func (r *TripRepository) GetTrips(ctx context.Context, userID string, filter models.TripFilter) ([]models.Trip, int64, error) {
	query := `SELECT id, user_id, region_id, poi_id, title, start_date, end_date, notes, created_at
		FROM trips`

	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.RegionID != "" {
		args = append(args, filter.RegionID)
		conditions = append(conditions, fmt.Sprintf("region_id = $%d", len(args)))
	}

	where := " WHERE " + strings.Join(conditions, " AND ")
	query += where

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	query += fmt.Sprintf(" ORDER BY start_date DESC, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	trips := []models.Trip{}
	for rows.Next() {
		var t models.Trip
		var createdAt string
		err := rows.Scan(
			&t.ID, &t.UserID, &t.RegionID, &t.POIID, &t.Title,
			&t.StartDate, &t.EndDate, &t.Notes, &createdAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan trip: %w", err)
		}
		if t.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, 0, err
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate trips: %w", err)
	}

	return trips, total, nil
}

// DeleteTrip removes one of the user's trips
func (r *TripRepository) DeleteTrip(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("trip", id)
	}
	return nil
}

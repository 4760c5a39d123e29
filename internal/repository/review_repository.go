package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
	"github.com/jengzang/travel-atlas-go/internal/models"
)

// ReviewRepository handles database operations for POI reviews
type ReviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CreateReview inserts a review. A second review of the same POI by the same
// user is a validation error.
func (r *ReviewRepository) CreateReview(ctx context.Context, review *models.Review) error {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM reviews WHERE user_id = $1 AND poi_id = $2`, review.UserID, review.POIID,
	).Scan(&one)
	switch {
	case err == nil:
		return apperror.Invalid("poiId", "already reviewed by this user")
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to look up review: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO reviews (id, user_id, poi_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		review.ID, review.UserID, review.POIID, review.Rating, review.Comment,
		formatTimestamp(review.CreatedAt),
	)
	if isUniqueViolation(err) {
		return apperror.Invalid("poiId", "already reviewed by this user")
	}
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// ListReviews retrieves a POI's reviews, newest first
func (r *ReviewRepository) ListReviews(ctx context.Context, poiID string) ([]models.Review, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, poi_id, rating, comment, created_at
		FROM reviews WHERE poi_id = $1 ORDER BY created_at DESC, id`, poiID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var rv models.Review
		var createdAt string
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.POIID, &rv.Rating, &rv.Comment, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		if rv.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
	"github.com/jengzang/travel-atlas-go/internal/database"
	"github.com/jengzang/travel-atlas-go/internal/mapdata"
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/spatial"
)

// POIRepository handles database operations for points of interest
type POIRepository struct {
	db *sql.DB
}

// NewPOIRepository creates a new POI repository
func NewPOIRepository(db *sql.DB) *POIRepository {
	return &POIRepository{db: db}
}

const poiColumns = `id, name, name_pt, description, description_pt, best_time, best_time_pt,
	category, lng, lat, image_url, image_gallery, social_video_url, highlight, priority`

// ListPOIsInBounds retrieves POIs inside the quantized bounds (inclusive),
// optionally limited to priority <= MaxPriority. POIs without a priority are
// excluded whenever a ceiling applies.
func (r *POIRepository) ListPOIsInBounds(ctx context.Context, query mapdata.POIQuery) ([]*models.POI, error) {
	b := query.Bounds
	conditions := []string{"lat BETWEEN $1 AND $2", "lng BETWEEN $3 AND $4"}
	args := []interface{}{b.MinLat, b.MaxLat, b.MinLng, b.MaxLng}

	if query.MaxPriority != nil {
		conditions = append(conditions, "priority IS NOT NULL AND priority <= $5")
		args = append(args, *query.MaxPriority)
	}

	return r.list(ctx, conditions, args)
}

// ListInBox retrieves every POI inside a bounding box (inclusive)
func (r *POIRepository) ListInBox(ctx context.Context, box spatial.MapBounds) ([]*models.POI, error) {
	return r.list(ctx,
		[]string{"lat BETWEEN $1 AND $2", "lng BETWEEN $3 AND $4"},
		[]interface{}{box.MinLat, box.MaxLat, box.MinLng, box.MaxLng},
	)
}

func (r *POIRepository) list(ctx context.Context, conditions []string, args []interface{}) ([]*models.POI, error) {
	query := `SELECT ` + poiColumns + ` FROM pois`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pois: %w", err)
	}
	defer rows.Close()

	pois := []*models.POI{}
	for rows.Next() {
		poi, err := scanPOI(rows)
		if err != nil {
			return nil, err
		}
		pois = append(pois, poi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pois: %w", err)
	}

	return pois, nil
}

// GetPOI retrieves a POI by id
func (r *POIRepository) GetPOI(ctx context.Context, id string) (*models.POI, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+poiColumns+` FROM pois WHERE id = $1`, id)
	poi, err := scanPOI(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("poi", id)
	}
	if err != nil {
		return nil, err
	}
	return poi, nil
}

// CreatePOI inserts a new POI. A duplicate id is a validation error.
func (r *POIRepository) CreatePOI(ctx context.Context, poi *models.POI) error {
	_, err := r.GetPOI(ctx, poi.ID)
	if err == nil {
		return apperror.Invalid("id", "already exists")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return err
	}

	args, err := poiArgs(poi)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO pois (`+poiColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`, args...)
	if isUniqueViolation(err) {
		return apperror.Invalid("id", "already exists")
	}
	if err != nil {
		return fmt.Errorf("failed to insert poi: %w", err)
	}
	return nil
}

// UpsertPOI inserts or replaces a POI
func (r *POIRepository) UpsertPOI(ctx context.Context, poi *models.POI) error {
	args, err := poiArgs(poi)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO pois (`+poiColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			name_pt = excluded.name_pt,
			description = excluded.description,
			description_pt = excluded.description_pt,
			best_time = excluded.best_time,
			best_time_pt = excluded.best_time_pt,
			category = excluded.category,
			lng = excluded.lng,
			lat = excluded.lat,
			image_url = excluded.image_url,
			image_gallery = excluded.image_gallery,
			social_video_url = excluded.social_video_url,
			highlight = excluded.highlight,
			priority = excluded.priority`, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert poi: %w", err)
	}
	return nil
}

// DeletePOI removes a POI and its reviews in one transaction
func (r *POIRepository) DeletePOI(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE poi_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete reviews: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM pois WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete poi: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			return apperror.NotFound("poi", id)
		}
		return nil
	})
}

func scanPOI(row rowScanner) (*models.POI, error) {
	var poi models.POI
	var name, namePT, desc, descPT, bestTime, bestTimePT, category, gallery string
	var priority sql.NullInt64

	err := row.Scan(
		&poi.ID, &name, &namePT, &desc, &descPT, &bestTime, &bestTimePT,
		&category, &poi.Coordinates[0], &poi.Coordinates[1], &poi.ImageURL, &gallery,
		&poi.SocialVideoURL, &poi.Highlight, &priority,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan poi: %w", err)
	}
	if err := decodeJSON(gallery, &poi.ImageGallery); err != nil {
		return nil, err
	}

	poi.Name = models.LocalizedString(name, namePT)
	poi.Description = models.LocalizedString(desc, descPT)
	poi.BestTime = models.LocalizedString(bestTime, bestTimePT)
	poi.Category = models.Category(category)
	if priority.Valid {
		p := int(priority.Int64)
		poi.Priority = &p
	}
	return &poi, nil
}

func poiArgs(poi *models.POI) ([]interface{}, error) {
	gallery, err := encodeJSON(nonNil(poi.ImageGallery))
	if err != nil {
		return nil, err
	}
	namePT, _ := poi.Name.Translation(models.LocalePT)
	descPT, _ := poi.Description.Translation(models.LocalePT)
	bestTimePT, _ := poi.BestTime.Translation(models.LocalePT)

	var priority sql.NullInt64
	if poi.Priority != nil {
		priority = sql.NullInt64{Int64: int64(*poi.Priority), Valid: true}
	}

	return []interface{}{
		poi.ID, poi.Name.Default, namePT, poi.Description.Default, descPT,
		poi.BestTime.Default, bestTimePT, string(poi.Category), poi.Lng(), poi.Lat(),
		poi.ImageURL, gallery, poi.SocialVideoURL, poi.Highlight, priority,
	}, nil
}

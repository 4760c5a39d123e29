package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
	"github.com/jengzang/travel-atlas-go/internal/database"
	"github.com/jengzang/travel-atlas-go/internal/models"
)

// RegionRepository handles database operations for regions and their
// monthly metrics
type RegionRepository struct {
	db *sql.DB
}

// NewRegionRepository creates a new region repository
func NewRegionRepository(db *sql.DB) *RegionRepository {
	return &RegionRepository{db: db}
}

const regionColumns = `id, name, name_pt, country, description, description_pt, geometry`

const monthlyColumns = `region_id, month, weather_score, cost_score, recommended_score,
	weather_desc, weather_desc_pt, why_visit, why_visit_pt, avg_daily_cost,
	highlights, highlights_pt`

// ListRegions retrieves every region ordered by id. Months are not populated.
func (r *RegionRepository) ListRegions(ctx context.Context) ([]*models.Region, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+regionColumns+` FROM regions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	var regions []*models.Region
	for rows.Next() {
		region, err := scanRegion(rows)
		if err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate regions: %w", err)
	}

	return regions, nil
}

// ListMonthlyData retrieves every monthly metric row
func (r *RegionRepository) ListMonthlyData(ctx context.Context) ([]models.MonthlyRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+monthlyColumns+` FROM region_monthly_data ORDER BY region_id, month`)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly data: %w", err)
	}
	defer rows.Close()

	var out []models.MonthlyRow
	for rows.Next() {
		var row models.MonthlyRow
		var desc, descPT, why, whyPT, highlights, highlightsPT string
		var highlightList, highlightPTList []string
		err := rows.Scan(
			&row.RegionID, &row.Month, &row.WeatherScore, &row.CostScore, &row.RecommendedScore,
			&desc, &descPT, &why, &whyPT, &row.AvgDailyCost,
			&highlights, &highlightsPT,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan monthly data: %w", err)
		}
		if err := decodeJSON(highlights, &highlightList); err != nil {
			return nil, err
		}
		if err := decodeJSON(highlightsPT, &highlightPTList); err != nil {
			return nil, err
		}
		row.WeatherDesc = models.LocalizedString(desc, descPT)
		row.WhyVisit = models.LocalizedString(why, whyPT)
		row.Highlights = models.LocalizedList(highlightList, highlightPTList)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly data: %w", err)
	}

	return out, nil
}

// Exists reports whether a region with id is stored
func (r *RegionRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM regions WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up region: %w", err)
	}
	return true, nil
}

// CreateRegion inserts a new region. A duplicate id is a validation error.
func (r *RegionRepository) CreateRegion(ctx context.Context, region *models.Region) error {
	exists, err := r.Exists(ctx, region.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.Invalid("id", "already exists")
	}

	args, err := regionArgs(region)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO regions (`+regionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`, args...)
	if isUniqueViolation(err) {
		return apperror.Invalid("id", "already exists")
	}
	if err != nil {
		return fmt.Errorf("failed to insert region: %w", err)
	}
	return nil
}

// UpsertRegion inserts or replaces a region
func (r *RegionRepository) UpsertRegion(ctx context.Context, region *models.Region) error {
	args, err := regionArgs(region)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO regions (`+regionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			name_pt = excluded.name_pt,
			country = excluded.country,
			description = excluded.description,
			description_pt = excluded.description_pt,
			geometry = excluded.geometry`, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert region: %w", err)
	}
	return nil
}

// UpsertMonthly inserts or replaces one monthly metric row. The region must
// exist.
func (r *RegionRepository) UpsertMonthly(ctx context.Context, row models.MonthlyRow) error {
	exists, err := r.Exists(ctx, row.RegionID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NotFound("region", row.RegionID)
	}

	descPT, _ := row.WeatherDesc.Translation(models.LocalePT)
	whyPT, _ := row.WhyVisit.Translation(models.LocalePT)
	highlightsPT, _ := row.Highlights.Translation(models.LocalePT)
	highlights, err := encodeJSON(nonNil(row.Highlights.Default))
	if err != nil {
		return err
	}
	highlightsPTJSON, err := encodeJSON(nonNil(highlightsPT))
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO region_monthly_data (`+monthlyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (region_id, month) DO UPDATE SET
			weather_score = excluded.weather_score,
			cost_score = excluded.cost_score,
			recommended_score = excluded.recommended_score,
			weather_desc = excluded.weather_desc,
			weather_desc_pt = excluded.weather_desc_pt,
			why_visit = excluded.why_visit,
			why_visit_pt = excluded.why_visit_pt,
			avg_daily_cost = excluded.avg_daily_cost,
			highlights = excluded.highlights,
			highlights_pt = excluded.highlights_pt`,
		row.RegionID, row.Month, row.WeatherScore, row.CostScore, row.RecommendedScore,
		row.WeatherDesc.Default, descPT, row.WhyVisit.Default, whyPT, row.AvgDailyCost,
		highlights, highlightsPTJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert monthly data: %w", err)
	}
	return nil
}

// DeleteRegion removes a region and its monthly rows in one transaction
func (r *RegionRepository) DeleteRegion(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM region_monthly_data WHERE region_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete monthly data: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM regions WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete region: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			return apperror.NotFound("region", id)
		}
		return nil
	})
}

func scanRegion(row rowScanner) (*models.Region, error) {
	var region models.Region
	var name, namePT, desc, descPT, geometry string
	if err := row.Scan(&region.ID, &name, &namePT, &region.Country, &desc, &descPT, &geometry); err != nil {
		return nil, fmt.Errorf("failed to scan region: %w", err)
	}
	if err := decodeJSON(geometry, &region.Geometry); err != nil {
		return nil, err
	}
	region.Name = models.LocalizedString(name, namePT)
	region.Description = models.LocalizedString(desc, descPT)
	return &region, nil
}

func regionArgs(region *models.Region) ([]interface{}, error) {
	geometry, err := encodeJSON(region.Geometry)
	if err != nil {
		return nil, err
	}
	namePT, _ := region.Name.Translation(models.LocalePT)
	descPT, _ := region.Description.Translation(models.LocalePT)
	return []interface{}{
		region.ID, region.Name.Default, namePT, region.Country,
		region.Description.Default, descPT, geometry,
	}, nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

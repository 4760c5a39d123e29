package mapdata

import (
	"sort"
	"time"

	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/spatial"
)

// Reference is the joined region/monthly-data snapshot. It is shared by all
// callers and must be treated as read-only.
type Reference struct {
	Regions  []*models.Region
	ByID     map[string]*models.Region
	Index    *spatial.RegionIndex
	LoadedAt time.Time
	// Orphans counts monthly rows whose region does not exist.
	Orphans int
}

// Region returns the region with id.
func (r *Reference) Region(id string) (*models.Region, bool) {
	region, ok := r.ByID[id]
	return region, ok
}

// Assemble joins monthly rows onto regions by region id, grouping them into a
// month -> metric map per region. Regions are ordered by id. Rows for unknown
// regions are dropped and counted in Orphans; a later row for the same region
// and month replaces an earlier one.
func Assemble(regions []*models.Region, rows []models.MonthlyRow, loadedAt time.Time) *Reference {
	ref := &Reference{
		Regions:  make([]*models.Region, 0, len(regions)),
		ByID:     make(map[string]*models.Region, len(regions)),
		LoadedAt: loadedAt,
	}
	for _, r := range regions {
		if r == nil {
			continue
		}
		r.Months = make(map[int]*models.MonthlyMetric)
		ref.ByID[r.ID] = r
		ref.Regions = append(ref.Regions, r)
	}
	sort.Slice(ref.Regions, func(i, j int) bool { return ref.Regions[i].ID < ref.Regions[j].ID })

	for i := range rows {
		row := rows[i]
		region, ok := ref.ByID[row.RegionID]
		if !ok {
			ref.Orphans++
			continue
		}
		metric := row.MonthlyMetric
		region.Months[row.Month] = &metric
	}

	ref.Index = spatial.NewRegionIndex(ref.Regions)
	return ref
}

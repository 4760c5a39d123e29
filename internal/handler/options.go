package handler

import (
	"time"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
	"github.com/jengzang/travel-atlas-go/internal/mapdata"
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/scoring"
	"github.com/jengzang/travel-atlas-go/internal/spatial"
)

// renderOptions resolves the month, mode and locale of a map request. A zero
// month means the current month.
func renderOptions(month int, mode, locale string, now time.Time) (mapdata.RenderOptions, error) {
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return mapdata.RenderOptions{}, apperror.Invalid("month", "must be between 1 and 12")
	}
	m, ok := scoring.ParseViewMode(mode)
	if !ok {
		return mapdata.RenderOptions{}, apperror.Invalid("mode", "must be weather, cost or recommended")
	}
	return mapdata.RenderOptions{Month: month, Mode: m, Locale: models.ParseLocale(locale)}, nil
}

// viewportBounds requires every bound and the zoom of a map request and
// validates the resulting viewport.
func viewportBounds(f models.MapFilter) (spatial.MapBounds, error) {
	params := []struct {
		field string
		value *float64
	}{
		{"minLat", f.MinLat},
		{"maxLat", f.MaxLat},
		{"minLng", f.MinLng},
		{"maxLng", f.MaxLng},
		{"zoom", f.Zoom},
	}
	for _, p := range params {
		if p.value == nil {
			return spatial.MapBounds{}, apperror.Invalid(p.field, "is required")
		}
	}
	b := spatial.MapBounds{
		MinLat: *f.MinLat,
		MaxLat: *f.MaxLat,
		MinLng: *f.MinLng,
		MaxLng: *f.MaxLng,
		Zoom:   *f.Zoom,
	}
	if err := b.Validate(); err != nil {
		return spatial.MapBounds{}, err
	}
	return b, nil
}

package spatial

import (
	"fmt"
	"math"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
)

const (
	// GridStep is the quantization cell size in degrees.
	GridStep = 0.5
	// MaxZoom is the deepest zoom level a viewport may carry.
	MaxZoom = 30
)

// MapBounds is a map viewport.
type MapBounds struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLng float64 `json:"minLng"`
	MaxLng float64 `json:"maxLng"`
	Zoom   float64 `json:"zoom"`
}

// QuantizedBounds is a viewport snapped outward to the GridStep grid with an
// integer zoom. It is the cache and query key for viewport data.
type QuantizedBounds struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLng float64 `json:"minLng"`
	MaxLng float64 `json:"maxLng"`
	Zoom   int     `json:"zoom"`
}

// Validate rejects viewports with non-finite coordinates, coordinates off the
// globe or a zoom outside 0..MaxZoom.
func (b MapBounds) Validate() error {
	coords := []struct {
		field string
		value float64
		limit float64
	}{
		{"minLat", b.MinLat, 90},
		{"maxLat", b.MaxLat, 90},
		{"minLng", b.MinLng, 180},
		{"maxLng", b.MaxLng, 180},
	}
	for _, c := range coords {
		if !finite(c.value) || math.Abs(c.value) > c.limit {
			return apperror.Invalid(c.field, fmt.Sprintf("must be between %g and %g", -c.limit, c.limit))
		}
	}
	if !finite(b.Zoom) || b.Zoom < 0 || b.Zoom > MaxZoom {
		return apperror.Invalid("zoom", fmt.Sprintf("must be between 0 and %d", MaxZoom))
	}
	return nil
}

// Quantize snaps b outward to the grid: minimums are floored and maximums
// ceiled to the nearest GridStep line, then clamped to valid coordinates.
// Zoom is clamped to 0..MaxZoom and rounded to the nearest integer. Swapped
// min/max pairs are ordered first.
func Quantize(b MapBounds) QuantizedBounds {
	minLat, maxLat := ordered(b.MinLat, b.MaxLat)
	minLng, maxLng := ordered(b.MinLng, b.MaxLng)
	return QuantizedBounds{
		MinLat: clampLat(snapDown(minLat)),
		MaxLat: clampLat(snapUp(maxLat)),
		MinLng: clampLng(snapDown(minLng)),
		MaxLng: clampLng(snapUp(maxLng)),
		Zoom:   int(math.Round(clampZoom(b.Zoom))),
	}
}

// Key returns the cache key of q.
func (q QuantizedBounds) Key() string {
	return fmt.Sprintf("%.1f,%.1f,%.1f,%.1f@z%d", q.MinLat, q.MaxLat, q.MinLng, q.MaxLng, q.Zoom)
}

// Contains reports whether the point lies in q, edges included.
func (q QuantizedBounds) Contains(lat, lng float64) bool {
	return lat >= q.MinLat && lat <= q.MaxLat && lng >= q.MinLng && lng <= q.MaxLng
}

// PriorityCeiling returns the highest POI priority shown at zoom. ok is false
// when every POI is shown.
func PriorityCeiling(zoom int) (ceiling int, ok bool) {
	switch {
	case zoom <= 3:
		return 0, true
	case zoom <= 5:
		return 2, true
	case zoom <= 8:
		return 5, true
	default:
		return 0, false
	}
}

func snapDown(v float64) float64 { return noNegZero(math.Floor(v/GridStep) * GridStep) }

func snapUp(v float64) float64 { return noNegZero(math.Ceil(v/GridStep) * GridStep) }

// noNegZero keeps -0 from producing a distinct key.
func noNegZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

func ordered(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}

func clampLat(v float64) float64 { return math.Max(-90, math.Min(90, v)) }

func clampLng(v float64) float64 { return math.Max(-180, math.Min(180, v)) }

// clampZoom maps NaN to 0 so the int conversion never overflows.
func clampZoom(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(MaxZoom, v))
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

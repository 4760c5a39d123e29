// Package scoring maps a region's monthly metrics to map fill colors.
//
// Every mode is an ordered list of tiers, most desirable first. A score lands
// in the first tier whose threshold it reaches; the last tier has no
// threshold and catches everything else, including out-of-range and NaN
// scores.
package scoring

import (
	"math"
	"strings"

	"github.com/jengzang/travel-atlas-go/internal/models"
)

// ViewMode selects the metric that drives map coloring.
type ViewMode string

// View modes
const (
	ModeWeather     ViewMode = "weather"
	ModeCost        ViewMode = "cost"
	ModeRecommended ViewMode = "recommended"
)

// DefaultMode is used when a request names no mode.
const DefaultMode = ModeRecommended

// Modes lists the supported view modes.
var Modes = []ViewMode{ModeWeather, ModeCost, ModeRecommended}

// ParseViewMode parses a request value. ok is false for unknown values, in
// which case DefaultMode is returned.
func ParseViewMode(s string) (ViewMode, bool) {
	switch m := ViewMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeWeather, ModeCost, ModeRecommended:
		return m, true
	case "":
		return DefaultMode, true
	}
	return DefaultMode, false
}

// Color is an opaque fill color (HSL with alpha).
type Color string

// NoDataColor is used for regions without a metric for the selected month.
const NoDataColor Color = "hsla(220, 9%, 46%, 0.25)"

type tier struct {
	min   float64
	label string
	color Color
}

var (
	weatherTiers = []tier{
		{9, "excellent", "hsla(142, 71%, 45%, 0.55)"},
		{7, "good", "hsla(84, 65%, 50%, 0.5)"},
		{5, "fair", "hsla(48, 96%, 53%, 0.5)"},
		{3, "poor", "hsla(25, 95%, 53%, 0.5)"},
		{math.Inf(-1), "bad", "hsla(0, 84%, 60%, 0.5)"},
	}
	costTiers = []tier{
		{8, "cheap", "hsla(142, 71%, 45%, 0.55)"},
		{5, "moderate", "hsla(48, 96%, 53%, 0.5)"},
		{math.Inf(-1), "expensive", "hsla(0, 84%, 60%, 0.5)"},
	}
	recommendedTiers = []tier{
		{7.5, "highly recommended", "hsla(142, 71%, 45%, 0.55)"},
		{5.5, "good time", "hsla(48, 96%, 53%, 0.5)"},
		{math.Inf(-1), "not ideal", "hsla(0, 84%, 60%, 0.5)"},
	}
)

func tiersFor(mode ViewMode) []tier {
	switch mode {
	case ModeWeather:
		return weatherTiers
	case ModeCost:
		return costTiers
	default:
		return recommendedTiers
	}
}

func scoreFor(m *models.MonthlyMetric, mode ViewMode) float64 {
	switch mode {
	case ModeWeather:
		return m.WeatherScore
	case ModeCost:
		return m.CostScore
	default:
		return m.RecommendedScore
	}
}

// classify returns the index of the tier score falls into.
func classify(tiers []tier, score float64) int {
	last := len(tiers) - 1
	for i := 0; i < last; i++ {
		if score >= tiers[i].min {
			return i
		}
	}
	return last
}

// TierFor returns the tier index of metric under mode, 0 being the most
// desirable. ok is false when metric is nil.
func TierFor(metric *models.MonthlyMetric, mode ViewMode) (idx int, ok bool) {
	if metric == nil {
		return 0, false
	}
	return classify(tiersFor(mode), scoreFor(metric, mode)), true
}

// ColorFor maps a monthly metric to its fill color under mode. A nil metric
// yields NoDataColor.
func ColorFor(metric *models.MonthlyMetric, mode ViewMode) Color {
	idx, ok := TierFor(metric, mode)
	if !ok {
		return NoDataColor
	}
	return tiersFor(mode)[idx].color
}

// LegendEntry describes one tier for display.
type LegendEntry struct {
	Label    string   `json:"label"`
	Color    Color    `json:"color"`
	MinScore *float64 `json:"minScore,omitempty"` // nil for the catch-all tier
}

// Legend lists the tiers of mode, most desirable first, followed by the
// no-data entry.
func Legend(mode ViewMode) []LegendEntry {
	tiers := tiersFor(mode)
	entries := make([]LegendEntry, 0, len(tiers)+1)
	for i, t := range tiers {
		e := LegendEntry{Label: t.label, Color: t.color}
		if i < len(tiers)-1 {
			threshold := t.min
			e.MinScore = &threshold
		}
		entries = append(entries, e)
	}
	return append(entries, LegendEntry{Label: "no data", Color: NoDataColor})
}

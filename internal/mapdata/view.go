package mapdata

import (
	"github.com/jengzang/travel-atlas-go/internal/models"
	"github.com/jengzang/travel-atlas-go/internal/scoring"
	"github.com/jengzang/travel-atlas-go/internal/spatial"
)

// RenderOptions selects what a view shows.
type RenderOptions struct {
	Month  int
	Mode   scoring.ViewMode
	Locale models.Locale
}

// View is the client payload for one viewport.
type View struct {
	Key     string                  `json:"key"`
	Bounds  spatial.QuantizedBounds `json:"bounds"`
	Month   int                     `json:"month"`
	Mode    scoring.ViewMode        `json:"mode"`
	Locale  models.Locale           `json:"locale"`
	Regions FeatureCollection       `json:"regions"`
	POIs    []POIView               `json:"pois"`
	Legend  []scoring.LegendEntry   `json:"legend"`
}

// FeatureCollection is a GeoJSON feature collection of regions.
type FeatureCollection struct {
	Type     string          `json:"type"`
	Features []RegionFeature `json:"features"`
}

// RegionFeature is a GeoJSON polygon feature.
type RegionFeature struct {
	Type       string           `json:"type"`
	ID         string           `json:"id"`
	Geometry   PolygonGeometry  `json:"geometry"`
	Properties RegionProperties `json:"properties"`
}

// PolygonGeometry is a GeoJSON polygon.
type PolygonGeometry struct {
	Type        string         `json:"type"`
	Coordinates models.Polygon `json:"coordinates"`
}

// RegionProperties are the resolved display properties of a region.
type RegionProperties struct {
	Name        string        `json:"name"`
	Country     string        `json:"country"`
	Description string        `json:"description"`
	Color       scoring.Color `json:"color"`
	HasData     bool          `json:"hasData"`
	Tier        *int          `json:"tier,omitempty"`
	Metric      *MetricView   `json:"metric,omitempty"`
}

// MetricView is a monthly metric resolved to one locale.
type MetricView struct {
	WeatherScore     float64  `json:"weatherScore"`
	CostScore        float64  `json:"costScore"`
	RecommendedScore float64  `json:"recommendedScore"`
	WeatherDesc      string   `json:"weatherDesc"`
	WhyVisit         string   `json:"whyVisit"`
	AvgDailyCost     float64  `json:"avgDailyCost"`
	Highlights       []string `json:"highlights"`
}

// POIView is a POI resolved to one locale.
type POIView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	BestTime       string          `json:"bestTime"`
	Category       models.Category `json:"category"`
	Coordinates    [2]float64      `json:"coordinates"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	ImageGallery   []string        `json:"imageGallery,omitempty"`
	SocialVideoURL string          `json:"socialVideoUrl,omitempty"`
	Highlight      bool            `json:"highlight"`
	Priority       *int            `json:"priority,omitempty"`
}

// Render shapes data into the client payload.
func Render(data *MapData, opts RenderOptions) *View {
	return &View{
		Key:     data.Key,
		Bounds:  data.Bounds,
		Month:   opts.Month,
		Mode:    opts.Mode,
		Locale:  opts.Locale,
		Regions: RegionFeatures(data.Reference.Regions, opts),
		POIs:    POIViews(data.POIs, opts.Locale),
		Legend:  scoring.Legend(opts.Mode),
	}
}

// RegionFeatures builds one feature per region, colored by the metric of the
// selected month under the selected mode.
func RegionFeatures(regions []*models.Region, opts RenderOptions) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]RegionFeature, 0, len(regions))}
	for _, r := range regions {
		metric := r.Metric(opts.Month)
		props := RegionProperties{
			Name:        r.Name.Resolve(opts.Locale),
			Country:     r.Country,
			Description: r.Description.Resolve(opts.Locale),
			Color:       scoring.ColorFor(metric, opts.Mode),
		}
		if tier, ok := scoring.TierFor(metric, opts.Mode); ok {
			props.HasData = true
			props.Tier = &tier
			props.Metric = ResolveMetric(metric, opts.Locale)
		}
		fc.Features = append(fc.Features, RegionFeature{
			Type:       "Feature",
			ID:         r.ID,
			Geometry:   PolygonGeometry{Type: "Polygon", Coordinates: r.Geometry},
			Properties: props,
		})
	}
	return fc
}

// ResolveMetric resolves the localized fields of m.
func ResolveMetric(m *models.MonthlyMetric, locale models.Locale) *MetricView {
	return &MetricView{
		WeatherScore:     m.WeatherScore,
		CostScore:        m.CostScore,
		RecommendedScore: m.RecommendedScore,
		WeatherDesc:      m.WeatherDesc.Resolve(locale),
		WhyVisit:         m.WhyVisit.Resolve(locale),
		AvgDailyCost:     m.AvgDailyCost,
		Highlights:       m.Highlights.Resolve(locale),
	}
}

// POIViews resolves pois to locale.
func POIViews(pois []*models.POI, locale models.Locale) []POIView {
	views := make([]POIView, 0, len(pois))
	for _, p := range pois {
		views = append(views, ResolvePOI(p, locale))
	}
	return views
}

// ResolvePOI resolves the localized fields of p.
func ResolvePOI(p *models.POI, locale models.Locale) POIView {
	return POIView{
		ID:             p.ID,
		Name:           p.Name.Resolve(locale),
		Description:    p.Description.Resolve(locale),
		BestTime:       p.BestTime.Resolve(locale),
		Category:       p.Category,
		Coordinates:    p.Coordinates,
		ImageURL:       p.ImageURL,
		ImageGallery:   p.ImageGallery,
		SocialVideoURL: p.SocialVideoURL,
		Highlight:      p.Highlight,
		Priority:       p.Priority,
	}
}

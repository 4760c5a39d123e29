package models

// Category is the closed set of POI kinds.
type Category string

// POI categories
const (
	CategoryLandmark      Category = "landmark"
	CategoryNature        Category = "nature"
	CategoryCulture       Category = "culture"
	CategoryBeach         Category = "beach"
	CategoryCity          Category = "city"
	CategoryWonder        Category = "wonder"
	CategoryNaturalWonder Category = "natural_wonder"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryLandmark, CategoryNature, CategoryCulture, CategoryBeach,
		CategoryCity, CategoryWonder, CategoryNaturalWonder:
		return true
	}
	return false
}

// POI is a single-point place of interest.
type POI struct {
	ID             string            `json:"id"`
	Name           Localized[string] `json:"name"`
	Description    Localized[string] `json:"description"`
	BestTime       Localized[string] `json:"bestTime"`
	Category       Category          `json:"category"`
	Coordinates    [2]float64        `json:"coordinates"` // [lng, lat]
	ImageURL       string            `json:"imageUrl,omitempty"`
	ImageGallery   []string          `json:"imageGallery,omitempty"`
	SocialVideoURL string            `json:"socialVideoUrl,omitempty"`
	Highlight      bool              `json:"highlight"`
	Priority       *int              `json:"priority,omitempty"` // lower = more significant
}

// Lng returns the POI longitude.
func (p *POI) Lng() float64 { return p.Coordinates[0] }

// Lat returns the POI latitude.
func (p *POI) Lat() float64 { return p.Coordinates[1] }

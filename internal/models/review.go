package models

import "time"

// Review is a user's rating of a POI.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	POIID     string    `json:"poiId"`
	Rating    int       `json:"rating"` // 1-5
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewInput is the request body for reviewing a POI.
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewList is the public review listing of a POI.
type ReviewList struct {
	POIID         string   `json:"poiId"`
	Reviews       []Review `json:"reviews"`
	Count         int      `json:"count"`
	AverageRating float64  `json:"averageRating"`
}

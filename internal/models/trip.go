package models

import "time"

// DateLayout is the wire and storage format of trip dates.
const DateLayout = "2006-01-02"

// Trip is a user's logged visit to a region.
type Trip struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	RegionID  string    `json:"regionId"`
	POIID     string    `json:"poiId,omitempty"`
	Title     string    `json:"title"`
	StartDate string    `json:"startDate"` // YYYY-MM-DD
	EndDate   string    `json:"endDate"`   // YYYY-MM-DD
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TripInput is the request body for logging a trip.
type TripInput struct {
	RegionID  string `json:"regionId"`
	POIID     string `json:"poiId"`
	Title     string `json:"title"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Notes     string `json:"notes"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// GeoPoint is a GeoJSON point, coordinates ordered [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type Alert struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Location    GeoPoint  `json:"location"`
	// Media holds opaque storage keys in upload order. Signed URLs are
	// derived from them at read time and never persisted.
	Media     []string  `json:"media"`
	Likes     int64     `json:"likes"`
	Comments  int64     `json:"comments"`
	Views     int64     `json:"views"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

type CreateAlertRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Type        string   `json:"type" validate:"required"`
	Location    GeoPoint `json:"location"`
	Media       []string `json:"media"`
}

package client

import "time"

// GeoPoint is a GeoJSON point, coordinates ordered [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type Alert struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Location    GeoPoint  `json:"location"`
	Media       []string  `json:"media"`
	Likes       int64     `json:"likes"`
	Comments    int64     `json:"comments"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
}

type CreateAlertRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Location    GeoPoint `json:"location"`
	Media       []string `json:"media"`
}

type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UploadCredential is a single-use, time-boxed grant for one direct PUT to
// object storage. Key outlives the URL and identifies the object forever.
type UploadCredential struct {
	UploadURL string `json:"uploadURL"`
	Key       string `json:"key"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

package models

import "time"

// ArtworkURL is a temporary presigned URL for uploading or downloading a
// film's artwork directly against object storage.
type ArtworkURL struct {
	// FilmID identifies which film the artwork belongs to.
	FilmID string `json:"filmId"`
	// Method is the HTTP method the URL is signed for ("PUT" or "GET").
	Method string `json:"method"`
	// URL is the presigned URL.
	URL string `json:"url"`
	// ExpiresAt is when the signature stops being accepted.
	ExpiresAt time.Time `json:"expiresAt"`
}

package models

import "time"

// PlaceResult is a single point of interest returned by a place search provider.
type PlaceResult struct {
	ID          string  `json:"id"`           // ID is unique within one search response.
	Name        string  `json:"name"`         // Name is the short human-readable name.
	DisplayName string  `json:"display_name"` // DisplayName is the full name including the address.
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// ViewState is everything the nearby screen renders.
// Location is nil until a position fix succeeds.
type ViewState struct {
	Location    *GeoPoint     `json:"location"`
	Restaurants []PlaceResult `json:"restaurants"`
}

// SearchRecord is one successful search kept in the search history.
type SearchRecord struct {
	ID          int64     // ID is the database identifier of the record.
	Location    GeoPoint  // Location is the position the search was issued for.
	Provider    string    // Provider is the name of the search provider.
	ResultCount int       // ResultCount is the number of places returned.
	SearchedAt  time.Time // SearchedAt is when the record was stored.
}

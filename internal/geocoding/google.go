package geocoding

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/UnknownOlympus/nearby/internal/geo"
	"github.com/UnknownOlympus/nearby/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Places nearby search.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
}

// NewGoogleProvider initializes a new GoogleProvider with the given client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// SearchNearby queries Google Places for restaurants around point.
// Places has no bounding-box filter, so the radius covers the whole search box and
// results outside the box are dropped afterwards. At most ResultLimit places are kept.
func (gp *GoogleProvider) SearchNearby(ctx context.Context, point models.GeoPoint) ([]models.PlaceResult, error) {
	box := geo.NewBoundingBox(point, geo.SearchHalfWidthDeg)
	gp.log.DebugContext(ctx, "Searching nearby places using Google Maps",
		"lat", point.Latitude, "lon", point.Longitude, "viewbox", box.ViewBox())

	req := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: point.Latitude, Lng: point.Longitude},
		Radius:   searchRadiusMeters(point, box),
		Keyword:  SearchTerm,
		Type:     maps.PlaceTypeRestaurant,
	}

	resp, err := gp.client.NearbySearch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search nearby places: %w", ErrSearchRequestFailed, err)
	}

	places := make([]models.PlaceResult, 0, ResultLimit)
	for _, result := range resp.Results {
		loc := result.Geometry.Location
		if !box.Contains(loc.Lat, loc.Lng) {
			continue
		}

		displayName := result.Name
		if result.Vicinity != "" {
			displayName = result.Name + ", " + result.Vicinity
		}

		places = append(places, models.PlaceResult{
			ID:          result.PlaceID,
			Name:        result.Name,
			DisplayName: displayName,
			Latitude:    loc.Lat,
			Longitude:   loc.Lng,
		})
		if len(places) == ResultLimit {
			break
		}
	}

	gp.log.DebugContext(ctx, "Google Maps found places", "received", len(resp.Results), "kept", len(places))

	return places, nil
}

// searchRadiusMeters returns the distance from point to the farthest corner of box.
func searchRadiusMeters(point models.GeoPoint, box geo.BoundingBox) uint {
	const metersPerKm = 1000
	km := geo.DistanceKm(point.Latitude, point.Longitude, box.MaxLat, box.MaxLon)

	return uint(math.Ceil(km * metersPerKm))
}

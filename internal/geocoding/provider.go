package geocoding

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/nearby/internal/models"
)

// SearchTerm is the free-text term every provider searches for.
const SearchTerm = "restaurant"

// ResultLimit is the maximum number of places a search returns.
const ResultLimit = 10

// ErrSearchRequestFailed wraps every transport or response failure of a provider.
var ErrSearchRequestFailed = errors.New("search request failed")

// Provider is an interface that defines a method for finding restaurants around a point.
// SearchNearby returns the places inside the search box around point in the order
// the upstream service returned them, or an error if the request or its response failed.
type Provider interface {
	SearchNearby(ctx context.Context, point models.GeoPoint) ([]models.PlaceResult, error)
}

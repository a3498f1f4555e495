package geo

import (
	"strconv"
	"strings"

	"github.com/UnknownOlympus/nearby/internal/models"
)

// SearchHalfWidthDeg is the half-width of the search box in degrees on both axes.
// It is not scaled by latitude, so the box narrows in longitude away from the equator.
const SearchHalfWidthDeg = 0.01

// BoundingBox is a rectangular region expressed in degrees.
// Field order follows the Nominatim viewbox order.
type BoundingBox struct {
	MinLon float64
	MaxLat float64
	MaxLon float64
	MinLat float64
}

// NewBoundingBox returns the box spanning halfWidth degrees around p in both axes.
func NewBoundingBox(p models.GeoPoint, halfWidth float64) BoundingBox {
	return BoundingBox{
		MinLon: p.Longitude - halfWidth,
		MaxLat: p.Latitude + halfWidth,
		MaxLon: p.Longitude + halfWidth,
		MinLat: p.Latitude - halfWidth,
	}
}

// Contains reports whether the given coordinates fall inside the box, edges included.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// ViewBox renders the box as "minLon,maxLat,maxLon,minLat".
func (b BoundingBox) ViewBox() string {
	parts := []string{
		formatDeg(b.MinLon),
		formatDeg(b.MaxLat),
		formatDeg(b.MaxLon),
		formatDeg(b.MinLat),
	}

	return strings.Join(parts, ",")
}

func formatDeg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

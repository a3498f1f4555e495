package geo_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/UnknownOlympus/nearby/internal/geo"
	"github.com/UnknownOlympus/nearby/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoundingBox(t *testing.T) {
	box := geo.NewBoundingBox(models.GeoPoint{Latitude: 10, Longitude: 20}, geo.SearchHalfWidthDeg)

	assert.InDelta(t, 19.99, box.MinLon, 1e-9)
	assert.InDelta(t, 10.01, box.MaxLat, 1e-9)
	assert.InDelta(t, 20.01, box.MaxLon, 1e-9)
	assert.InDelta(t, 9.99, box.MinLat, 1e-9)
}

func TestBoundingBox_Contains(t *testing.T) {
	box := geo.NewBoundingBox(models.GeoPoint{Latitude: 40, Longitude: -75}, geo.SearchHalfWidthDeg)

	assert.True(t, box.Contains(40, -75))
	assert.True(t, box.Contains(40.005, -74.995))
	assert.False(t, box.Contains(40.02, -75))
	assert.False(t, box.Contains(40, -74.98))
}

func TestBoundingBox_ViewBox(t *testing.T) {
	box := geo.NewBoundingBox(models.GeoPoint{Latitude: 10, Longitude: 20}, geo.SearchHalfWidthDeg)

	parts := strings.Split(box.ViewBox(), ",")
	require.Len(t, parts, 4)

	want := []float64{19.99, 10.01, 20.01, 9.99}
	for i, part := range parts {
		got, err := strconv.ParseFloat(part, 64)
		require.NoError(t, err)
		assert.InDelta(t, want[i], got, 1e-9)
	}
}

package geo_test

import (
	"math"
	"testing"

	"github.com/UnknownOlympus/nearby/internal/geo"
	"github.com/stretchr/testify/assert"
)

func TestDistanceKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lon1      float64
		lat2      float64
		lon2      float64
		wantKm    float64
		tolerance float64
	}{
		{
			name: "same point",
			lat1: 25.033, lon1: 121.565,
			lat2: 25.033, lon2: 121.565,
			wantKm:    0,
			tolerance: 1e-9,
		},
		{
			name: "quarter of the equator",
			lat1: 0, lon1: 0,
			lat2: 0, lon2: 90,
			wantKm:    10007.5,
			tolerance: 1,
		},
		{
			name: "antipodal points",
			lat1: 0, lon1: 0,
			lat2: 0, lon2: 180,
			wantKm:    math.Pi * geo.EarthRadiusKm,
			tolerance: 0.001,
		},
		{
			name: "New York to Los Angeles",
			lat1: 40.7128, lon1: -74.0060,
			lat2: 34.0522, lon2: -118.2437,
			wantKm:    3944,
			tolerance: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geo.DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.wantKm, got, tt.tolerance)
		})
	}
}

func TestDistanceKm_IdenticalPoints(t *testing.T) {
	points := [][2]float64{{0, 0}, {90, 180}, {-90, -180}, {50.4501, 30.5234}, {-33.8688, 151.2093}}

	for _, p := range points {
		assert.InDelta(t, 0, geo.DistanceKm(p[0], p[1], p[0], p[1]), 1e-9)
	}
}

func TestDistanceKm_Symmetry(t *testing.T) {
	d1 := geo.DistanceKm(25.0, 121.0, 26.0, 122.0)
	d2 := geo.DistanceKm(26.0, 122.0, 25.0, 121.0)

	assert.InDelta(t, d1, d2, 1e-9)
}

func TestFormatKm(t *testing.T) {
	t.Run("restaurant one hundredth of a degree north", func(t *testing.T) {
		km := geo.DistanceKm(40.0, -75.0, 40.01, -75.00)
		assert.Equal(t, "1.11", geo.FormatKm(km))
	})

	t.Run("zero", func(t *testing.T) {
		assert.Equal(t, "0.00", geo.FormatKm(0))
	})
}

package geocoding_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/nearby/internal/geocoding"
	"github.com/UnknownOlympus/nearby/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

type mockGoogleClient struct {
	mock.Mock
}

func (m *mockGoogleClient) NearbySearch(
	ctx context.Context,
	r *maps.NearbySearchRequest,
) (maps.PlacesSearchResponse, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(maps.PlacesSearchResponse), args.Error(1)
}

func googleResult(id, name string, lat, lng float64) maps.PlacesSearchResult {
	return maps.PlacesSearchResult{
		PlaceID:  id,
		Name:     name,
		Vicinity: "Main St",
		Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: lat, Lng: lng}},
	}
}

func TestGoogleProvider_SearchNearby(t *testing.T) {
	ctx := t.Context()
	point := models.GeoPoint{Latitude: 40, Longitude: -75}

	t.Run("api returns error", func(t *testing.T) {
		mockClient := &mockGoogleClient{}
		provider := geocoding.NewGoogleProvider(mockClient, slog.Default())

		mockClient.On("NearbySearch", ctx, mock.Anything).
			Return(maps.PlacesSearchResponse{}, assert.AnError).Once()

		places, err := provider.SearchNearby(ctx, point)

		require.Nil(t, places)
		require.ErrorIs(t, err, assert.AnError)
		require.ErrorIs(t, err, geocoding.ErrSearchRequestFailed)
		mockClient.AssertExpectations(t)
	})

	t.Run("request describes a restaurant search covering the box", func(t *testing.T) {
		mockClient := &mockGoogleClient{}
		provider := geocoding.NewGoogleProvider(mockClient, slog.Default())

		matchRequest := mock.MatchedBy(func(r *maps.NearbySearchRequest) bool {
			return r.Keyword == "restaurant" &&
				r.Type == maps.PlaceTypeRestaurant &&
				r.Location != nil && r.Location.Lat == 40 && r.Location.Lng == -75 &&
				r.Radius >= 1112 && r.Radius < 1600
		})
		mockClient.On("NearbySearch", ctx, matchRequest).Return(maps.PlacesSearchResponse{}, nil).Once()

		places, err := provider.SearchNearby(ctx, point)

		require.NoError(t, err)
		assert.Empty(t, places)
		mockClient.AssertExpectations(t)
	})

	t.Run("drops results outside the box and keeps order", func(t *testing.T) {
		mockClient := &mockGoogleClient{}
		provider := geocoding.NewGoogleProvider(mockClient, slog.Default())

		resp := maps.PlacesSearchResponse{Results: []maps.PlacesSearchResult{
			googleResult("b", "Bistro", 40.005, -75.005),
			googleResult("far", "Far Diner", 40.02, -75),
			googleResult("a", "Cafe", 40.01, -75),
		}}
		mockClient.On("NearbySearch", ctx, mock.Anything).Return(resp, nil).Once()

		places, err := provider.SearchNearby(ctx, point)

		require.NoError(t, err)
		require.Len(t, places, 2)
		assert.Equal(t, "b", places[0].ID)
		assert.Equal(t, "Bistro", places[0].Name)
		assert.Equal(t, "Bistro, Main St", places[0].DisplayName)
		assert.Equal(t, "a", places[1].ID)
		mockClient.AssertExpectations(t)
	})

	t.Run("caps results at the limit", func(t *testing.T) {
		mockClient := &mockGoogleClient{}
		provider := geocoding.NewGoogleProvider(mockClient, slog.Default())

		var results []maps.PlacesSearchResult
		for i := range 15 {
			results = append(results, googleResult(string(rune('a'+i)), "Place", 40, -75))
		}
		mockClient.On("NearbySearch", ctx, mock.Anything).
			Return(maps.PlacesSearchResponse{Results: results}, nil).Once()

		places, err := provider.SearchNearby(ctx, point)

		require.NoError(t, err)
		assert.Len(t, places, geocoding.ResultLimit)
		mockClient.AssertExpectations(t)
	})
}

package render_test

import (
	"bytes"
	"testing"

	"github.com/UnknownOlympus/nearby/internal/models"
	"github.com/UnknownOlympus/nearby/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	place := models.PlaceResult{ID: "1", Name: "Pasta Bar", DisplayName: "Pasta Bar, Main St", Latitude: 40.01, Longitude: -75.00}

	t.Run("with location", func(t *testing.T) {
		loc := models.GeoPoint{Latitude: 40.0, Longitude: -75.0}
		screen := render.Build(models.ViewState{Location: &loc, Restaurants: []models.PlaceResult{place}})

		require.Len(t, screen.Items, 1)
		assert.Equal(t, "1.11", screen.Items[0].DistanceKm)
		assert.Equal(t, "Pasta Bar", screen.Items[0].Name)
		assert.Equal(t, "Pasta Bar, Main St", screen.Items[0].Address)
	})

	t.Run("without location", func(t *testing.T) {
		screen := render.Build(models.ViewState{Restaurants: []models.PlaceResult{place}})

		require.Len(t, screen.Items, 1)
		assert.Empty(t, screen.Items[0].DistanceKm)
		assert.Nil(t, screen.Location)
	})

	t.Run("keeps response order", func(t *testing.T) {
		loc := models.GeoPoint{Latitude: 40.0, Longitude: -75.0}
		far := models.PlaceResult{ID: "far", Latitude: 40.009, Longitude: -75.009}
		near := models.PlaceResult{ID: "near", Latitude: 40.001, Longitude: -75.0}
		screen := render.Build(models.ViewState{Location: &loc, Restaurants: []models.PlaceResult{far, near}})

		require.Len(t, screen.Items, 2)
		assert.Equal(t, "far", screen.Items[0].ID)
		assert.Equal(t, "near", screen.Items[1].ID)
	})
}

func TestText(t *testing.T) {
	t.Run("golden output", func(t *testing.T) {
		loc := models.GeoPoint{Latitude: 40.0, Longitude: -75.0}
		state := models.ViewState{
			Location: &loc,
			Restaurants: []models.PlaceResult{
				{ID: "1", Name: "Pasta Bar", DisplayName: "Pasta Bar, Main St", Latitude: 40.01, Longitude: -75.00},
			},
		}

		var buf bytes.Buffer
		require.NoError(t, render.Text(&buf, render.Build(state)))

		want := "Your Location:\n" +
			"Latitude: 40.0000, Longitude: -75.0000\n\n" +
			"Pasta Bar\n" +
			"Pasta Bar, Main St\n" +
			"1.11 km\n\n"
		assert.Equal(t, want, buf.String())
	})

	t.Run("empty state renders nothing", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render.Text(&buf, render.Build(models.ViewState{})))

		assert.Empty(t, buf.String())
	})
}

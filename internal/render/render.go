// Package render turns a view state into what the user sees.
package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/UnknownOlympus/nearby/internal/geo"
	"github.com/UnknownOlympus/nearby/internal/models"
)

// Item is one row of the restaurant list.
// Distance is empty when the user's location is unknown.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	DistanceKm  string `json:"distance_km,omitempty"`
	distanceSet bool
}

// Screen is the rendered nearby screen.
type Screen struct {
	Location *models.GeoPoint `json:"location,omitempty"`
	Items    []Item           `json:"restaurants"`
}

// Build annotates every restaurant with its distance from the user, keeping list order.
func Build(state models.ViewState) Screen {
	screen := Screen{Location: state.Location, Items: make([]Item, 0, len(state.Restaurants))}

	for _, place := range state.Restaurants {
		item := Item{ID: place.ID, Name: place.Name, Address: place.DisplayName}
		if state.Location != nil {
			km := geo.DistanceKm(state.Location.Latitude, state.Location.Longitude, place.Latitude, place.Longitude)
			item.DistanceKm = geo.FormatKm(km)
			item.distanceSet = true
		}
		screen.Items = append(screen.Items, item)
	}

	return screen
}

// Text writes the screen as plain text.
func Text(w io.Writer, screen Screen) error {
	if screen.Location != nil {
		_, err := fmt.Fprintf(w, "Your Location:\nLatitude: %s, Longitude: %s\n\n",
			strconv.FormatFloat(screen.Location.Latitude, 'f', 4, 64),
			strconv.FormatFloat(screen.Location.Longitude, 'f', 4, 64))
		if err != nil {
			return fmt.Errorf("failed to write location: %w", err)
		}
	}

	for _, item := range screen.Items {
		if _, err := fmt.Fprintf(w, "%s\n%s\n", item.Name, item.Address); err != nil {
			return fmt.Errorf("failed to write restaurant %s: %w", item.ID, err)
		}
		if item.distanceSet {
			if _, err := fmt.Fprintf(w, "%s km\n", item.DistanceKm); err != nil {
				return fmt.Errorf("failed to write distance of %s: %w", item.ID, err)
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("failed to write separator: %w", err)
		}
	}

	return nil
}

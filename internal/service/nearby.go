package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/nearby/internal/geocoding"
	"github.com/UnknownOlympus/nearby/internal/location"
	"github.com/UnknownOlympus/nearby/internal/metrics"
	"github.com/UnknownOlympus/nearby/internal/models"
	"github.com/UnknownOlympus/nearby/internal/repository"
)

// Locator obtains the user's position once.
type Locator interface {
	Acquire(ctx context.Context) (models.GeoPoint, error)
}

// NearbyService owns the view state of the nearby screen.
// It runs the permission, position and search flow once and keeps the results
// for the lifetime of the process. Failures are logged and leave the state as it was.
type NearbyService struct {
	log          *slog.Logger         // Logger for logging service activities
	locator      Locator              // Locator runs the permission check and position fix
	provider     geocoding.Provider   // Search provider for nearby restaurants
	providerName string               // Name of the provider for metrics labeling
	metrics      *metrics.Metrics     // Metrics for tracking service performance
	history      repository.Interface // Optional search history, nil when disabled

	once  sync.Once
	mu    sync.RWMutex
	state models.ViewState
}

// NewNearbyService creates a new instance of NearbyService with an empty state.
// history may be nil.
func NewNearbyService(
	log *slog.Logger,
	locator Locator,
	provider geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
	history repository.Interface,
) *NearbyService {
	return &NearbyService{
		log:          log,
		locator:      locator,
		provider:     provider,
		providerName: providerName,
		metrics:      metrics,
		history:      history,
	}
}

// Start runs the flow. Only the first call does anything.
func (ns *NearbyService) Start(ctx context.Context) {
	ns.once.Do(func() {
		ns.run(ctx)
	})
}

// State returns a copy of the current view state.
func (ns *NearbyService) State() models.ViewState {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	state := models.ViewState{}
	if ns.state.Location != nil {
		loc := *ns.state.Location
		state.Location = &loc
	}
	if ns.state.Restaurants != nil {
		state.Restaurants = append([]models.PlaceResult(nil), ns.state.Restaurants...)
	}

	return state
}

func (ns *NearbyService) run(ctx context.Context) {
	ns.log.InfoContext(ctx, "Requesting location...")

	startTime := time.Now()
	point, err := ns.locator.Acquire(ctx)
	ns.metrics.PositionSeconds.Observe(time.Since(startTime).Seconds())

	if err != nil {
		switch {
		case errors.Is(err, location.ErrPermissionDenied):
			ns.log.WarnContext(ctx, "Location permission denied", "error", err)
			ns.metrics.FlowOutcome.WithLabelValues("permission_denied").Inc()
		default:
			ns.log.ErrorContext(ctx, "Failed to get current position", "error", err)
			ns.metrics.FlowOutcome.WithLabelValues("position_failed").Inc()
		}
		return
	}

	ns.setLocation(point)
	ns.log.InfoContext(ctx, "Position acquired", "lat", point.Latitude, "lon", point.Longitude)

	if err = ns.search(ctx, point); err != nil {
		ns.metrics.FlowOutcome.WithLabelValues("search_failed").Inc()
		return
	}
	ns.metrics.FlowOutcome.WithLabelValues("success").Inc()
}

// search queries the provider and replaces the restaurant list on success.
// On failure the previous list is kept.
func (ns *NearbyService) search(ctx context.Context, point models.GeoPoint) error {
	startTime := time.Now()
	places, err := ns.provider.SearchNearby(ctx, point)
	ns.metrics.SearchSeconds.WithLabelValues(ns.providerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		ns.log.ErrorContext(ctx, "Failed to search nearby restaurants", "provider", ns.providerName, "error", err)
		ns.metrics.SearchRequests.WithLabelValues(ns.providerName, "failure").Inc()
		return err
	}
	ns.metrics.SearchRequests.WithLabelValues(ns.providerName, "success").Inc()

	ns.mu.Lock()
	ns.state.Restaurants = places
	ns.mu.Unlock()
	ns.metrics.Restaurants.Set(float64(len(places)))

	ns.log.InfoContext(ctx, "Nearby restaurants found", "count", len(places))

	if ns.history != nil {
		if errSave := ns.history.SaveSearch(ctx, point, ns.providerName, places); errSave != nil {
			ns.log.ErrorContext(ctx, "Could not save search to history", "error", errSave)
		}
	}

	return nil
}

func (ns *NearbyService) setLocation(point models.GeoPoint) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	ns.state.Location = &point
}

// Package location obtains a single position fix after the location permission is granted.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/UnknownOlympus/nearby/internal/models"
)

// State is a step of the location acquisition flow.
type State string

const (
	StateUnrequested       State = "unrequested"
	StatePermissionPending State = "permission_pending"
	StatePermissionDenied  State = "permission_denied"
	StatePermissionGranted State = "permission_granted"
	StatePositionPending   State = "position_pending"
	StatePositionAcquired  State = "position_acquired"
	StatePositionFailed    State = "position_failed"
)

var (
	// ErrPermissionDenied is returned when the user did not grant location access.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrPositionUnavailable is returned when the provider failed or timed out.
	ErrPositionUnavailable = errors.New("position unavailable")
	// ErrAlreadyRequested is returned when Acquire is called more than once.
	ErrAlreadyRequested = errors.New("location already requested")
)

// Acquirer runs the permission check and the position request exactly once.
type Acquirer struct {
	log         *slog.Logger
	permissions PermissionChecker
	provider    PositionProvider
	opts        PositionOptions

	mu    sync.Mutex
	state State
}

// NewAcquirer creates an Acquirer in the Unrequested state.
func NewAcquirer(
	log *slog.Logger,
	permissions PermissionChecker,
	provider PositionProvider,
	opts PositionOptions,
) *Acquirer {
	return &Acquirer{
		log:         log,
		permissions: permissions,
		provider:    provider,
		opts:        opts,
		state:       StateUnrequested,
	}
}

// State returns the current state of the flow.
func (a *Acquirer) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

func (a *Acquirer) transition(ctx context.Context, to State) {
	a.mu.Lock()
	from := a.state
	a.state = to
	a.mu.Unlock()

	a.log.DebugContext(ctx, "Location state changed", "from", from, "to", to)
}

// Acquire asks for permission and then for a single position fix.
// Denial and position failures are terminal: there is no retry.
func (a *Acquirer) Acquire(ctx context.Context) (models.GeoPoint, error) {
	a.mu.Lock()
	if a.state != StateUnrequested {
		a.mu.Unlock()
		return models.GeoPoint{}, ErrAlreadyRequested
	}
	a.state = StatePermissionPending
	a.mu.Unlock()

	granted, err := a.requestPermission(ctx)
	if err != nil || !granted {
		a.transition(ctx, StatePermissionDenied)
		if err != nil {
			return models.GeoPoint{}, fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
		return models.GeoPoint{}, ErrPermissionDenied
	}
	a.transition(ctx, StatePermissionGranted)

	a.transition(ctx, StatePositionPending)
	point, err := a.currentPosition(ctx)
	if err != nil {
		a.transition(ctx, StatePositionFailed)
		return models.GeoPoint{}, fmt.Errorf("%w: %w", ErrPositionUnavailable, err)
	}
	a.transition(ctx, StatePositionAcquired)

	return point, nil
}

func (a *Acquirer) requestPermission(ctx context.Context) (bool, error) {
	status, err := a.permissions.Check(ctx, KindLocationWhenInUse)
	if err != nil {
		return false, fmt.Errorf("failed to check permission: %w", err)
	}
	if status == StatusGranted {
		return true, nil
	}

	status, err = a.permissions.Request(ctx, KindLocationWhenInUse)
	if err != nil {
		return false, fmt.Errorf("failed to request permission: %w", err)
	}

	return status == StatusGranted, nil
}

func (a *Acquirer) currentPosition(ctx context.Context) (models.GeoPoint, error) {
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	point, err := a.provider.CurrentPosition(ctx, a.opts)
	if err != nil {
		return models.GeoPoint{}, err
	}
	if ctx.Err() != nil {
		return models.GeoPoint{}, ctx.Err()
	}
	if !point.Valid() {
		return models.GeoPoint{}, fmt.Errorf("provider returned out-of-range point %f,%f",
			point.Latitude, point.Longitude)
	}

	return point, nil
}

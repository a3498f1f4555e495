package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/UnknownOlympus/nearby/internal/models"
)

// PositionOptions are the parameters of a single position request.
type PositionOptions struct {
	HighAccuracy bool          // HighAccuracy asks for the most precise source available.
	Timeout      time.Duration // Timeout bounds the whole request.
	MaximumAge   time.Duration // MaximumAge is the oldest cached fix that may be returned.
}

// DefaultPositionOptions returns the options used for the nearby screen.
func DefaultPositionOptions() PositionOptions {
	const (
		timeout = 20000 * time.Millisecond
		maxAge  = 1000 * time.Millisecond
	)

	return PositionOptions{HighAccuracy: true, Timeout: timeout, MaximumAge: maxAge}
}

// PositionProvider is the device location provider.
type PositionProvider interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (models.GeoPoint, error)
}

// SourceType selects a PositionProvider implementation.
type SourceType string

const (
	// SourceStatic returns a fixed, configured position.
	SourceStatic SourceType = "static"
	// SourceIP approximates the position from the public IP address.
	SourceIP SourceType = "ip"
)

// NewPositionProvider creates a position provider for the given source.
func NewPositionProvider(source SourceType, fixed models.GeoPoint, log *slog.Logger) (PositionProvider, error) {
	switch source {
	case SourceStatic:
		return NewStaticProvider(fixed), nil
	case SourceIP:
		return NewIPProvider(log), nil
	default:
		return nil, fmt.Errorf("unsupported location source: %s", source)
	}
}

// StaticProvider always reports the same position.
type StaticProvider struct {
	point models.GeoPoint
}

// NewStaticProvider creates a StaticProvider reporting point.
func NewStaticProvider(point models.GeoPoint) *StaticProvider {
	return &StaticProvider{point: point}
}

// CurrentPosition returns the configured point unless ctx is already done.
func (sp *StaticProvider) CurrentPosition(ctx context.Context, _ PositionOptions) (models.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return models.GeoPoint{}, err
	}

	return sp.point, nil
}

// IPAPIBaseURL is the IP geolocation endpoint used by IPProvider.
const IPAPIBaseURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrIPLookupFailed is returned when the IP geolocation service reports a failure.
var ErrIPLookupFailed = errors.New("ip geolocation lookup failed")

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type cachedFix struct {
	point models.GeoPoint
	at    time.Time
}

// IPProvider approximates the position from the caller's public IP address.
// The fix is city-level, HighAccuracy cannot improve it.
type IPProvider struct {
	client  HTTPClient
	baseURL string
	log     *slog.Logger
	now     func() time.Time

	mu   sync.Mutex
	last *cachedFix
}

// NewIPProvider creates an IPProvider using the default HTTP client.
func NewIPProvider(log *slog.Logger) *IPProvider {
	return NewIPProviderWithClient(&http.Client{}, time.Now, log)
}

// NewIPProviderWithClient creates an IPProvider with a custom HTTP client and clock.
func NewIPProviderWithClient(client HTTPClient, now func() time.Time, log *slog.Logger) *IPProvider {
	return &IPProvider{client: client, baseURL: IPAPIBaseURL, log: log, now: now}
}

// CurrentPosition returns a cached fix younger than opts.MaximumAge or asks the service for a new one.
func (ip *IPProvider) CurrentPosition(ctx context.Context, opts PositionOptions) (models.GeoPoint, error) {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	if ip.last != nil && ip.now().Sub(ip.last.at) <= opts.MaximumAge {
		ip.log.DebugContext(ctx, "Using cached position fix", "age", ip.now().Sub(ip.last.at))
		return ip.last.point, nil
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ip.baseURL, nil)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := ip.client.Do(req)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("failed to execute ip lookup request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return models.GeoPoint{}, fmt.Errorf("%w: status %d: %s", ErrIPLookupFailed, resp.StatusCode, string(body))
	}

	var result ipAPIResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return models.GeoPoint{}, fmt.Errorf("failed to decode ip lookup response: %w", err)
	}
	if result.Status != "success" {
		return models.GeoPoint{}, fmt.Errorf("%w: %s", ErrIPLookupFailed, result.Message)
	}

	point := models.GeoPoint{Latitude: result.Lat, Longitude: result.Lon}
	ip.last = &cachedFix{point: point, at: ip.now()}
	ip.log.DebugContext(ctx, "IP lookup found position", "lat", point.Latitude, "lon", point.Longitude)

	return point, nil
}

package geocoding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/nearby/internal/geo"
	"github.com/UnknownOlympus/nearby/internal/models"
	"golang.org/x/time/rate"
)

// NominatimBaseURL is the public Nominatim search endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org/search"

// NominatimUserAgent identifies the application as required by the Nominatim usage policy:
// https://operations.osmfoundation.org/policies/nominatim/
const NominatimUserAgent = "Nearby-Restaurants/1.0 (https://github.com/UnknownOlympus/nearby)"

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// This is a free service with usage limits (1 request/second for fair use).
type NominatimProvider struct {
	client    HTTPClient    // HTTP client for making requests
	baseURL   string        // Base URL for the Nominatim API
	log       *slog.Logger  // Logger for logging operations
	userAgent string        // userAgent is required by Nominatim usage policy
	limiter   *rate.Limiter // Rate limiter
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// placeID accepts the Nominatim place_id both as a JSON number and as a JSON string.
type placeID string

func (p *placeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = placeID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = placeID(n.String())

	return nil
}

// nominatimPlace represents one record of the JSON response from Nominatim API.
type nominatimPlace struct {
	PlaceID     placeID `json:"place_id"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"` // Latitude as string
	Lon         string  `json:"lon"` // Longitude as string
}

// Common errors for Nominatim provider.
var (
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
	ErrNominatimMissingID     = errors.New("nominatim API returned a place without place_id")
)

// NewNominatimProvider creates a new Nominatim search provider.
// Uses the public Nominatim API endpoint and a limiter of one request per second.
func NewNominatimProvider(log *slog.Logger) *NominatimProvider {
	const timeout = 10
	return NewNominatimProviderWithClient(
		&http.Client{Timeout: timeout * time.Second},
		rate.NewLimiter(rate.Every(time.Second), 1),
		log,
	)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client and limiter.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *NominatimProvider {
	return &NominatimProvider{
		client:    client,
		baseURL:   NominatimBaseURL,
		log:       log,
		userAgent: NominatimUserAgent,
		limiter:   limiter,
	}
}

// SearchNearby looks up restaurants inside the ±0.01° box around point.
// The box is passed as a bounded viewbox, so Nominatim never returns places outside it.
func (np *NominatimProvider) SearchNearby(ctx context.Context, point models.GeoPoint) ([]models.PlaceResult, error) {
	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit exceeded: %w", ErrSearchRequestFailed, err)
	}

	box := geo.NewBoundingBox(point, geo.SearchHalfWidthDeg)
	np.log.DebugContext(ctx, "Searching nearby places using Nominatim",
		"lat", point.Latitude, "lon", point.Longitude, "viewbox", box.ViewBox())

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", SearchTerm)
	query.Set("format", "json")
	query.Set("limit", strconv.Itoa(ResultLimit))
	query.Set("viewbox", box.ViewBox())
	query.Set("bounded", "1")
	reqURL.RawQuery = query.Encode()

	np.log.DebugContext(ctx, "Nominatim request URL", "url", reqURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set required headers per Nominatim usage policy
	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute search request: %w", ErrSearchRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: nominatim API returned status %d: %s",
			ErrSearchRequestFailed, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrSearchRequestFailed, err)
	}

	np.log.DebugContext(ctx, "Nominatim raw response", "body", string(body))

	var records []nominatimPlace
	if err = json.Unmarshal(body, &records); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, fmt.Errorf("%w: failed to decode nominatim response: %w", ErrSearchRequestFailed, err)
	}

	places := make([]models.PlaceResult, 0, len(records))
	for _, record := range records {
		place, errParse := record.toPlace()
		if errParse != nil {
			return nil, fmt.Errorf("%w: %w", ErrSearchRequestFailed, errParse)
		}
		places = append(places, place)
	}

	np.log.DebugContext(ctx, "Nominatim found places", "count", len(places))

	return places, nil
}

func (r nominatimPlace) toPlace() (models.PlaceResult, error) {
	if r.PlaceID == "" {
		return models.PlaceResult{}, ErrNominatimMissingID
	}

	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return models.PlaceResult{}, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, r.Lat)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return models.PlaceResult{}, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, r.Lon)
	}
	// ParseFloat accepts "NaN" and "Inf"; Valid rejects both.
	if !(models.GeoPoint{Latitude: lat, Longitude: lon}).Valid() {
		return models.PlaceResult{}, fmt.Errorf(
			"%w: coordinates out of range: %s,%s", ErrNominatimInvalidCoords, r.Lat, r.Lon,
		)
	}

	name := r.Name
	if name == "" {
		name, _, _ = strings.Cut(r.DisplayName, ",")
		name = strings.TrimSpace(name)
	}

	return models.PlaceResult{
		ID:          string(r.PlaceID),
		Name:        name,
		DisplayName: r.DisplayName,
		Latitude:    lat,
		Longitude:   lon,
	}, nil
}

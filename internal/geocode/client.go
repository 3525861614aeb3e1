package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// ErrUnavailable indicates the provider is unconfigured or unreachable.
// Callers treat it as non-fatal and leave coordinates unset.
var ErrUnavailable = errors.New("geocode: provider unavailable")

// Coordinates is a geocoding hit.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Client wraps the Google Maps geocoding endpoint.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient builds the geocoding client. An empty API key leaves the client
// constructed but permanently unavailable.
func NewClient(apiKey, baseURL string, logger *zap.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location Coordinates `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// Geocode resolves an address. Returns (nil, nil) when the provider reports
// no match, and ErrUnavailable when the lookup cannot be made at all.
func (c *Client) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	if c.apiKey == "" {
		return nil, ErrUnavailable
	}

	endpoint := fmt.Sprintf("%s/maps/api/geocode/json?address=%s&key=%s",
		c.baseURL, url.QueryEscape(address), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("geocode request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.logger.Warn("geocode returned non-success", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}

	if payload.Status == "ZERO_RESULTS" || (payload.Status == "OK" && len(payload.Results) == 0) {
		return nil, nil
	}
	if payload.Status != "OK" {
		c.logger.Warn("geocode rejected lookup",
			zap.String("status", payload.Status),
			zap.String("message", payload.ErrorMessage))
		return nil, fmt.Errorf("%w: status %s", ErrUnavailable, payload.Status)
	}

	loc := payload.Results[0].Geometry.Location
	return &Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}

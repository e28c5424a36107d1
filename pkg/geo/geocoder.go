// Package geo resolves map coordinates to a street address through the
// Google Geocoding API.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const DefaultEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

type Geocoder struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *zap.Logger
}

type Option func(*Geocoder)

func WithEndpoint(endpoint string) Option {
	return func(g *Geocoder) { g.endpoint = endpoint }
}

func WithHTTPClient(c *http.Client) Option {
	return func(g *Geocoder) { g.http = c }
}

func NewGeocoder(apiKey string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Geocoder {
	g := &Geocoder{
		endpoint: DefaultEndpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Enabled is false when no API key is configured.
func (g *Geocoder) Enabled() bool {
	return g != nil && g.apiKey != ""
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

// Reverse returns the formatted address of the first result, or "" when the
// lookup yields nothing or the geocoder is disabled.
func (g *Geocoder) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	if !g.Enabled() {
		return "", nil
	}

	query := url.Values{}
	query.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	query.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		g.logger.Error("geocode request failed", zap.Error(err))
		return "", fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocode request failed: status %d", resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(body.Results) == 0 {
		g.logger.Debug("geocode returned no results", zap.String("status", body.Status))
		return "", nil
	}
	return body.Results[0].FormattedAddress, nil
}

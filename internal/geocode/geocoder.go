// Package geocode converts free-text addresses into coordinates via an
// external lookup service.
//
// Each address resolves independently; one failed lookup never aborts the
// rest of a batch.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"agritrace.io/provenance/internal/config"
	"agritrace.io/provenance/internal/domain"
	apperrors "agritrace.io/provenance/internal/pkg/errors"
	"agritrace.io/provenance/internal/pkg/logger"
)

// Geocoder resolves one address to coordinates.
type Geocoder interface {
	// Geocode returns the best-match coordinates for an address, or a
	// GEOCODE_MISS error when the service has no confident match. It never
	// returns a guessed coordinate.
	Geocode(ctx context.Context, address string) (*domain.Coordinates, error)
}

// HTTPGeocoder talks to a Nominatim-style search endpoint.
type HTTPGeocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewHTTPGeocoder creates a geocoder from configuration.
func NewHTTPGeocoder(cfg config.GeocoderConfig) *HTTPGeocoder {
	return &HTTPGeocoder{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
	}
}

// searchResult is the wire shape of one Nominatim match.
// Coordinates arrive as strings.
type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func miss(address string) error {
	return apperrors.Wrap(apperrors.ErrGeocodeMiss,
		apperrors.CodeGeocodeMiss, fmt.Sprintf("no match for address %q", address), 422)
}

// Geocode implements Geocoder.
func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) (*domain.Coordinates, error) {
	if strings.TrimSpace(address) == "" {
		return nil, miss(address)
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGeocoderDown, "build geocode request", 502)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGeocoderDown,
			"geocoding service unreachable", 502).WithRetryable()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(
			fmt.Errorf("geocoder returned %d", resp.StatusCode),
			apperrors.CodeGeocoderDown, "geocoding service error", 502).WithRetryable()
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGeocoderDown, "decode geocode response", 502)
	}
	if len(results) == 0 {
		return nil, miss(address)
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lng, lngErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lngErr != nil {
		// A malformed coordinate counts as no match, not a guess.
		return nil, miss(address)
	}

	logger.Debug("Address resolved",
		zap.String("address", address),
		zap.Float64("lat", lat),
		zap.Float64("lng", lng),
	)
	return &domain.Coordinates{Lat: lat, Lng: lng}, nil
}

// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meridianmedia/prc/spatial"
	"github.com/meridianmedia/prc/utils/httputils"
)

const (
	// GoogleMapsURL is the Google Maps Geocoding API endpoint.
	GoogleMapsURL = "https://maps.googleapis.com/maps/api/geocode/json"

	googleMapsName    = "google_maps"
	googleMapsTimeout = 10 * time.Second
)

// GoogleMapsResolver uses Google Maps Geocoding API as free-text resolver.
type GoogleMapsResolver struct {
	apiKey  string
	fetcher httputils.Fetcher
	options ProviderOptions
}

// NewGoogleMapsResolver creates a new Google Maps geocoder.
func NewGoogleMapsResolver(apiKey string, fetcher httputils.Fetcher, options ProviderOptions) *GoogleMapsResolver {
	return &GoogleMapsResolver{
		apiKey:  apiKey,
		fetcher: fetcher,
		options: options,
	}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

func (g *GoogleMapsResolver) Name() string {
	return googleMapsName
}

func (g *GoogleMapsResolver) Resolve(ctx context.Context, query string) (spatial.Coordinate, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return spatial.Coordinate{}, emptyQuery(googleMapsName, "empty query")
	}

	params := url.Values{}
	params.Set("address", q)
	params.Set("key", g.apiKey)
	params.Set("region", "uk") // Bias to the United Kingdom

	reqURL := g.options.endpoint(GoogleMapsURL) + "?" + params.Encode()

	resp, err := g.fetcher.Get(ctx, reqURL, g.options.headers("prc/"+g.options.version()), g.options.timeout(googleMapsTimeout))
	if err != nil {
		return spatial.Coordinate{}, classifyTransportError(googleMapsName, err)
	}

	if resp.StatusCode != http.StatusOK {
		return spatial.Coordinate{}, ClassifyHTTPError(googleMapsName, resp.StatusCode)
	}

	var gmResp googleMapsResponse
	if err := json.Unmarshal(resp.Body, &gmResp); err != nil {
		return spatial.Coordinate{}, &GeocodingError{
			Type:     ErrorTypeMalformedResponse,
			Provider: googleMapsName,
			Message:  "decoding response",
			Err:      err,
		}
	}

	if gmResp.Status != "OK" {
		return spatial.Coordinate{}, classifyGoogleStatus(gmResp.Status, gmResp.ErrorMessage)
	}

	if len(gmResp.Results) == 0 {
		return spatial.Coordinate{}, &GeocodingError{
			Type:     ErrorTypeNotFound,
			Provider: googleMapsName,
			Message:  "no results",
		}
	}

	loc := gmResp.Results[0].Geometry.Location

	c := spatial.Coordinate{Lat: loc.Lat, Lon: loc.Lng}
	if err := c.Validate(); err != nil {
		return spatial.Coordinate{}, malformed(googleMapsName, "invalid coordinates: %v", err)
	}

	return c, nil
}

func classifyGoogleStatus(status, message string) *GeocodingError {
	e := &GeocodingError{Provider: googleMapsName, Message: "google maps status: " + status}
	if message != "" {
		e.Message += " (" + message + ")"
	}

	switch status {
	case "ZERO_RESULTS":
		e.Type = ErrorTypeNotFound
	case "OVER_QUERY_LIMIT":
		e.Type = ErrorTypeRateLimit
	case "OVER_DAILY_LIMIT", "REQUEST_DENIED":
		e.Type = ErrorTypeQuotaExceeded
	case "INVALID_REQUEST":
		e.Type = ErrorTypeInvalidRequest
	default:
		e.Type = ErrorTypeUnknown
	}

	return e
}

// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/meridianmedia/prc/spatial"
	"github.com/meridianmedia/prc/utils/httputils"
)

const (
	// NominatimURL is the OpenStreetMap Nominatim search endpoint.
	NominatimURL = "https://nominatim.openstreetmap.org/search"

	nominatimName    = "nominatim"
	nominatimTimeout = 15 * time.Second
)

// NominatimResolver geocodes free text (addresses, towns, postcodes with a
// country hint) with OpenStreetMap Nominatim.
type NominatimResolver struct {
	fetcher httputils.Fetcher
	options ProviderOptions
}

// NewNominatimResolver creates the free-text resolver.
func NewNominatimResolver(fetcher httputils.Fetcher, options ProviderOptions) *NominatimResolver {
	return &NominatimResolver{fetcher: fetcher, options: options}
}

type nominatimPlace struct {
	Lat         *coordinateValue `json:"lat"`
	Lon         *coordinateValue `json:"lon"`
	DisplayName string           `json:"display_name"`
}

func (r *NominatimResolver) Name() string {
	return nominatimName
}

// UserAgent is the client signature required by the Nominatim usage policy.
func (r *NominatimResolver) UserAgent() string {
	ua := fmt.Sprintf("prc/%s (+coverage checker)", r.options.version())
	if email := r.options.contactEmail(); email != "" {
		ua += " " + email
	}

	return ua
}

// Resolve searches for text and returns the first hit.
func (r *NominatimResolver) Resolve(ctx context.Context, query string) (spatial.Coordinate, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return spatial.Coordinate{}, emptyQuery(nominatimName, "empty query")
	}

	// The query goes out as written: reserved characters such as commas keep
	// their literal meaning for the provider's parser.
	reqURL := r.options.endpoint(NominatimURL) + "?format=jsonv2&q=" + rawQueryValue(q) + "&limit=1"

	resp, err := r.fetcher.Get(ctx, reqURL, r.options.headers(r.UserAgent()), r.options.timeout(nominatimTimeout))
	if err != nil {
		return spatial.Coordinate{}, classifyTransportError(nominatimName, err)
	}

	if resp.StatusCode != http.StatusOK {
		return spatial.Coordinate{}, ClassifyHTTPError(nominatimName, resp.StatusCode)
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || body[0] != '[' {
		return spatial.Coordinate{}, malformed(nominatimName, "empty JSON")
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return spatial.Coordinate{}, &GeocodingError{
			Type:     ErrorTypeMalformedResponse,
			Provider: nominatimName,
			Message:  "decoding response",
			Err:      err,
		}
	}

	if len(places) == 0 {
		return spatial.Coordinate{}, &GeocodingError{
			Type:     ErrorTypeNotFound,
			Provider: nominatimName,
			Message:  "no results",
		}
	}

	place := places[0]
	if place.Lat == nil || place.Lon == nil || !place.Lat.set || !place.Lon.set {
		return spatial.Coordinate{}, malformed(nominatimName, "lat/lon missing in JSON")
	}

	c := spatial.Coordinate{Lat: place.Lat.value, Lon: place.Lon.value}
	if err := c.Validate(); err != nil {
		return spatial.Coordinate{}, malformed(nominatimName, "invalid coordinates: %v", err)
	}

	return c, nil
}

// rawQueryValue leaves s unencoded except for the bytes that cannot appear
// in an HTTP request target at all.
func rawQueryValue(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c >= 0x7f || c == '#' || c == '%' {
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])

			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}

// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/meridianmedia/prc/postcode"
	"github.com/meridianmedia/prc/spatial"
	"github.com/meridianmedia/prc/utils/httputils"
)

const (
	// PostcodesIOURL is the public postcodes.io API.
	PostcodesIOURL = "https://api.postcodes.io"

	postcodesIOName    = "postcodes.io"
	postcodesIOTimeout = 10 * time.Second
)

// PostcodesIOResolver looks up exact UK postcodes on postcodes.io.
type PostcodesIOResolver struct {
	fetcher httputils.Fetcher
	options ProviderOptions
}

// NewPostcodesIOResolver creates the structured postcode resolver.
func NewPostcodesIOResolver(fetcher httputils.Fetcher, options ProviderOptions) *PostcodesIOResolver {
	return &PostcodesIOResolver{fetcher: fetcher, options: options}
}

type postcodesIOResponse struct {
	Status int             `json:"status"`
	Result json.RawMessage `json:"result"`
}

type postcodesIOResult struct {
	Postcode  string          `json:"postcode"`
	Latitude  coordinateValue `json:"latitude"`
	Longitude coordinateValue `json:"longitude"`
}

func (r *PostcodesIOResolver) Name() string {
	return postcodesIOName
}

// Resolve looks the postcode up by its normalized form.
func (r *PostcodesIOResolver) Resolve(ctx context.Context, query string) (spatial.Coordinate, error) {
	pc := postcode.Normalize(query)
	if pc == "" {
		return spatial.Coordinate{}, emptyQuery(postcodesIOName, "empty postcode")
	}

	reqURL := r.options.endpoint(PostcodesIOURL) + "/postcodes/" + url.PathEscape(pc)

	userAgent := "prc/" + r.options.version()
	if r.options.SiteURL != "" {
		userAgent += " " + r.options.SiteURL
	}

	resp, err := r.fetcher.Get(ctx, reqURL, r.options.headers(userAgent), r.options.timeout(postcodesIOTimeout))
	if err != nil {
		return spatial.Coordinate{}, classifyTransportError(postcodesIOName, err)
	}

	if resp.StatusCode != http.StatusOK {
		return spatial.Coordinate{}, ClassifyHTTPError(postcodesIOName, resp.StatusCode)
	}

	var body postcodesIOResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return spatial.Coordinate{}, &GeocodingError{
			Type:     ErrorTypeMalformedResponse,
			Provider: postcodesIOName,
			Message:  "decoding response",
			Err:      err,
		}
	}

	raw := bytes.TrimSpace(body.Result)
	if len(raw) == 0 || raw[0] != '{' {
		return spatial.Coordinate{}, malformed(postcodesIOName, "empty JSON result")
	}

	var result postcodesIOResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return spatial.Coordinate{}, &GeocodingError{
			Type:     ErrorTypeMalformedResponse,
			Provider: postcodesIOName,
			Message:  "decoding result",
			Err:      err,
		}
	}

	// A zero latitude or longitude is treated as absent, the provider
	// reports unknown positions that way.
	if !result.Latitude.set || !result.Longitude.set || result.Latitude.value == 0 || result.Longitude.value == 0 {
		return spatial.Coordinate{}, malformed(postcodesIOName, "missing lat/lon")
	}

	c := spatial.Coordinate{Lat: result.Latitude.value, Lon: result.Longitude.value}
	if err := c.Validate(); err != nil {
		return spatial.Coordinate{}, malformed(postcodesIOName, "invalid coordinates: %v", err)
	}

	return c, nil
}


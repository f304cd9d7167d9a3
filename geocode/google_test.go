// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meridianmedia/prc/spatial"
	"github.com/meridianmedia/prc/utils/httputils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleMapsResolve(t *testing.T) {
	var query map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()

		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Blackpool FY1 1AA, UK",
				"geometry": {"location": {"lat": 53.8175, "lng": -3.0357}, "location_type": "APPROXIMATE"}
			}]
		}`))
	}))
	defer server.Close()

	g := NewGoogleMapsResolver("test-key", httputils.NewClient(nil), ProviderOptions{BaseURL: server.URL})

	c, err := g.Resolve(context.Background(), "FY1 1AA, UK")
	require.NoError(t, err)
	assert.Equal(t, spatial.Coordinate{Lat: 53.8175, Lon: -3.0357}, c)
	assert.Equal(t, []string{"FY1 1AA, UK"}, query["address"])
	assert.Equal(t, []string{"test-key"}, query["key"])
	assert.Equal(t, []string{"uk"}, query["region"])
}

func TestGoogleMapsResolveStatus(t *testing.T) {
	tests := []struct {
		status   string
		wantType ErrorType
	}{
		{"ZERO_RESULTS", ErrorTypeNotFound},
		{"OVER_QUERY_LIMIT", ErrorTypeRateLimit},
		{"REQUEST_DENIED", ErrorTypeQuotaExceeded},
		{"INVALID_REQUEST", ErrorTypeInvalidRequest},
		{"UNKNOWN_ERROR", ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"status":"` + tt.status + `","results":[]}`))
			}))
			defer server.Close()

			g := NewGoogleMapsResolver("k", httputils.NewClient(nil), ProviderOptions{BaseURL: server.URL})

			_, err := g.Resolve(context.Background(), "Blackpool")
			require.Error(t, err)
			assert.Equal(t, tt.wantType, ErrorTypeOf(err))
			assert.Contains(t, err.Error(), tt.status)
		})
	}
}

func TestGoogleMapsResolveKeepsKeyOutOfErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	base := server.URL
	server.Close()

	g := NewGoogleMapsResolver("SECRET-KEY-123", httputils.NewClient(nil), ProviderOptions{BaseURL: base})

	_, err := g.Resolve(context.Background(), "Blackpool")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
	assert.Contains(t, err.Error(), "key=REDACTED")
}

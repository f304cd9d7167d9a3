// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/meridianmedia/prc/coverage"
	"github.com/meridianmedia/prc/geocode"
	"github.com/meridianmedia/prc/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("FY1 1AA\n\n  la1 1aa  \r\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"FY1 1AA", "la1 1aa"}, lines)
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t, "FY1 1AA\tinside", formatResult("FY1 1AA", &coverage.Result{Inside: true}))

	d := 14.034
	assert.Equal(t, "PR1 1AA\toutside\t14.03 miles",
		formatResult("PR1 1AA", &coverage.Result{Distance: &d, Unit: coverage.UnitMiles}))
}

func TestRunBatchKeepsInputOrder(t *testing.T) {
	evaluator := coverage.NewEvaluator(nil, nil)
	postcodes := []string{"FY1 1AA", "LA1 1AA", " ", "fy8 2ab", "PR4 1AA"}

	lines, failed := runBatch(context.Background(), evaluator, coverage.DefaultConfig(), postcodes, 2)

	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{
		"FY1 1AA\tinside",
		"LA1 1AA\toutside",
		" \terror\tPostcode missing",
		"fy8 2ab\tinside",
		"PR4 1AA\toutside",
	}, lines)
}

func TestLoadSettings(t *testing.T) {
	p, err := loadSettings(&Options{})
	require.NoError(t, err)
	assert.Equal(t, coverage.DefaultConfig(), p.Current())

	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"allowed_prefixes":"PR"}`), 0o600))

	p, err = loadSettings(&Options{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "PR", p.Current().AllowedPrefixes)

	_, err = loadSettings(&Options{ConfigPath: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, closer, err := openStore(ctx, &Options{Cache: cacheMemory})
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.IsType(t, &geocode.MemoryStore{}, store)

	store, closer, err = openStore(ctx, &Options{Cache: cacheDuckDB, CachePath: filepath.Join(t.TempDir(), "cache.duckdb")})
	require.NoError(t, err)
	require.NotNil(t, closer)

	defer closer()

	c := spatial.Coordinate{Lat: 53.8175, Lon: -3.0357}
	require.NoError(t, store.Set(ctx, geocode.CacheKey("FY1 1AA"), c, geocode.DefaultVisitorTTL))

	got, ok, err := store.Get(ctx, geocode.CacheKey("FY1 1AA"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, c, got)

	_, _, err = openStore(ctx, &Options{Cache: "memcached"})
	assert.Error(t, err)
}

func TestNewFreeTextResolver(t *testing.T) {
	ctx := context.Background()

	r, err := newFreeTextResolver(ctx, &Options{}, nil, geocode.ProviderOptions{})
	require.NoError(t, err)
	assert.Equal(t, "nominatim", r.Name())

	r, err = newFreeTextResolver(ctx, &Options{FreeTextProvider: providerGoogle, GoogleAPIKey: "k"}, nil, geocode.ProviderOptions{})
	require.NoError(t, err)
	assert.IsType(t, &geocode.GoogleMapsResolver{}, r)

	_, err = newFreeTextResolver(ctx, &Options{FreeTextProvider: "bing"}, nil, geocode.ProviderOptions{})
	assert.Error(t, err)
}

func TestProviderOptionsFollowSettingsContact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"contact_email":"first@example.co.uk"}`), 0o600))

	settings, err := loadSettings(&Options{ConfigPath: path})
	require.NoError(t, err)

	r := geocode.NewNominatimResolver(nil, newProviderOptions(&Options{}, settings))
	assert.Contains(t, r.UserAgent(), "first@example.co.uk")

	require.NoError(t, os.WriteFile(path, []byte(`{"contact_email":"second@example.co.uk"}`), 0o600))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.Contains(t, r.UserAgent(), "second@example.co.uk")

	pinned := geocode.NewNominatimResolver(nil, newProviderOptions(&Options{ContactEmail: "flag@example.co.uk"}, settings))
	assert.Contains(t, pinned.UserAgent(), "flag@example.co.uk")
}

// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/meridianmedia/prc/coverage"
	"github.com/meridianmedia/prc/geocode"
	"github.com/meridianmedia/prc/metrics"
	"github.com/meridianmedia/prc/utils/httputils"
)

const (
	cacheMemory = "memory"
	cacheDuckDB = "duckdb"
	cacheRedis  = "redis"

	providerNominatim = "nominatim"
	providerGoogle    = "google"
)

// Options are the process wide settings shared by every command.
type Options struct {
	ConfigPath          string
	Cache               string
	CachePath           string
	RedisAddr           string
	ContactEmail        string
	SiteURL             string
	FreeTextProvider    string
	GoogleAPIKey        string
	GCPProject          string
	EnableHTTPTrace     bool
	EnableHTTPBodyTrace bool
}

// app holds the wired components of a command run.
type app struct {
	settings  coverage.Provider
	cache     *geocode.Cache
	router    *geocode.Router
	evaluator *coverage.Evaluator

	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("[prc] closing: %v", err)
		}
	}
}

// newApp builds the geocoding stack from opts. collector may be nil.
func newApp(ctx context.Context, opts *Options, collector *metrics.Collector) (*app, error) {
	a := &app{}

	settings, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}

	a.settings = settings

	var observer geocode.Observer = geocode.LogObserver{}
	if collector != nil {
		observer = geocode.Observers{observer, collector}
	}

	store, closer, err := openStore(ctx, opts)
	if err != nil {
		return nil, err
	}

	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	a.cache = geocode.NewCache(store, observer)

	fetcher := httputils.NewClient(newTransport(opts))
	providerOpts := newProviderOptions(opts, settings)

	freeText, err := newFreeTextResolver(ctx, opts, fetcher, providerOpts)
	if err != nil {
		a.Close()

		return nil, err
	}

	structured := geocode.NewPostcodesIOResolver(fetcher, providerOpts)
	a.router = geocode.NewRouter(geocode.DefaultRoutes(structured, freeText), a.cache, observer)

	var recorder coverage.Recorder
	if collector != nil {
		recorder = collector
	}

	a.evaluator = coverage.NewEvaluator(a.router, recorder)

	return a, nil
}

func loadSettings(opts *Options) (coverage.Provider, error) {
	if opts.ConfigPath == "" {
		return coverage.StaticProvider(coverage.DefaultConfig()), nil
	}

	p, err := coverage.NewFileProvider(opts.ConfigPath, func(err error) {
		log.Printf("[prc] keeping previous settings: %v", err)
	})
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	return p, nil
}

func openStore(ctx context.Context, opts *Options) (geocode.Store, func() error, error) {
	switch opts.Cache {
	case cacheMemory, "":
		return geocode.NewMemoryStore(time.Now), nil, nil
	case cacheDuckDB:
		store, err := openDuckDBStore(opts.CachePath)
		if err != nil {
			return nil, nil, err
		}

		return store, store.DB().Close, nil
	case cacheRedis:
		client := geocode.NewRedisClient(opts.RedisAddr, os.Getenv("PRC_REDIS_PASSWORD"), 0)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[prc] redis at %s not reachable, lookups will miss the cache: %v", opts.RedisAddr, err)
		}

		return geocode.NewRedisStore(client), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", opts.Cache)
	}
}

func openDuckDBStore(path string) (*geocode.DuckDBStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	store := geocode.NewDuckDBStore(db, time.Now)
	if err := store.CreateSchema(); err != nil {
		db.Close()

		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return store, nil
}

func newTransport(opts *Options) http.RoundTripper {
	var transport http.RoundTripper = &httputils.AppendRequestHeadersRoundTripper{
		Transport: http.DefaultTransport,
		Headers:   map[string]string{"Accept-Language": "en-GB"},
	}

	if opts.EnableHTTPTrace || opts.EnableHTTPBodyTrace {
		transport = &httputils.LoggingRoundTripper{
			Transport: transport,
			Writer:    os.Stderr,
			DumpBody:  opts.EnableHTTPBodyTrace,
		}
	}

	return transport
}

func newFreeTextResolver(
	ctx context.Context,
	opts *Options,
	fetcher httputils.Fetcher,
	providerOpts geocode.ProviderOptions,
) (geocode.Resolver, error) {
	switch opts.FreeTextProvider {
	case providerNominatim, "":
		return geocode.NewNominatimResolver(fetcher, providerOpts), nil
	case providerGoogle:
		apiKey := opts.GoogleAPIKey
		if apiKey == "" {
			log.Println("[prc] GOOGLE_MAPS_API_KEY is not set, looking it up via ADC")

			var err error

			apiKey, err = geocode.LookupGoogleAPIKey(ctx, opts.GCPProject, geocode.GoogleAPIKeyDisplayName)
			if err != nil {
				return nil, fmt.Errorf("google geocoder needs an API key: %w", err)
			}
		}

		return geocode.NewGoogleMapsResolver(apiKey, fetcher, providerOpts), nil
	default:
		return nil, errors.New("free-text provider must be nominatim or google")
	}
}

// newProviderOptions identifies the resolvers upstream. Without a
// --contact-email flag the email follows the settings file, reloads
// included.
func newProviderOptions(opts *Options, settings coverage.Provider) geocode.ProviderOptions {
	po := geocode.ProviderOptions{
		Version:      Version,
		ContactEmail: opts.ContactEmail,
		SiteURL:      opts.SiteURL,
	}

	if opts.ContactEmail == "" {
		po.ContactEmailFunc = func() string { return settings.Current().ContactEmail }
	}

	return po
}

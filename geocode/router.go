// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/meridianmedia/prc/postcode"
	"github.com/meridianmedia/prc/spatial"
)

// ukSuffix biases free-text lookups of postcodes towards the UK.
const ukSuffix = ", UK"

// Route is one step of a lookup plan. Match selects the queries the step
// applies to (nil matches all), Rewrite adapts the query text for the
// resolver (nil sends it untouched).
type Route struct {
	Resolver Resolver
	Match    func(query string) bool
	Rewrite  func(query string) string
}

// DefaultRoutes builds the standard plan: UK postcodes go to the structured
// resolver first and fall back to the free-text resolver with a UK hint,
// anything else goes straight to the free-text resolver.
func DefaultRoutes(structured, freeText Resolver) []Route {
	notPostcode := func(q string) bool { return !postcode.IsUKPostcode(q) }

	return []Route{
		{Resolver: structured, Match: postcode.IsUKPostcode},
		{Resolver: freeText, Match: postcode.IsUKPostcode, Rewrite: func(q string) string { return q + ukSuffix }},
		{Resolver: freeText, Match: notPostcode},
	}
}

// Router tries its routes in order until one resolves the query. Lookups go
// through the cache on both ends.
type Router struct {
	routes   []Route
	cache    *Cache
	observer Observer
}

// NewRouter creates a router. cache and observer may be nil.
func NewRouter(routes []Route, cache *Cache, observer Observer) *Router {
	if observer == nil {
		observer = nopObserver{}
	}

	return &Router{routes: routes, cache: cache, observer: observer}
}

// Geocode resolves query to a coordinate. Each failed attempt is reported to
// the observer; when every applicable route fails the error wraps
// ErrNoCoordinates.
func (r *Router) Geocode(ctx context.Context, query string, role QueryRole) (spatial.Coordinate, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return spatial.Coordinate{}, fmt.Errorf("%w: empty query", ErrNoCoordinates)
	}

	if r.cache != nil {
		if c, ok := r.cache.Get(ctx, q); ok {
			return c, nil
		}
	}

	var errs []error

	for _, route := range r.routes {
		if route.Match != nil && !route.Match(q) {
			continue
		}

		if err := ctx.Err(); err != nil {
			errs = append(errs, err)

			break
		}

		text := q
		if route.Rewrite != nil {
			text = route.Rewrite(q)
		}

		c, err := route.Resolver.Resolve(ctx, text)
		if err != nil {
			r.observer.ResolverFailed(route.Resolver.Name(), text, err)
			errs = append(errs, err)

			continue
		}

		if r.cache != nil {
			r.cache.Put(ctx, q, c, role)
		}

		return c, nil
	}

	if len(errs) == 0 {
		return spatial.Coordinate{}, fmt.Errorf("%w for %q: no resolver accepts it", ErrNoCoordinates, q)
	}

	return spatial.Coordinate{}, fmt.Errorf("%w for %q: %w", ErrNoCoordinates, q, errors.Join(errs...))
}

// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"sync"
	"time"

	"github.com/meridianmedia/prc/spatial"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// stubResolver answers from a fixed table and records every query.
type stubResolver struct {
	name    string
	results map[string]spatial.Coordinate
	err     error

	mu      sync.Mutex
	queries []string
}

func (s *stubResolver) Name() string { return s.name }

func (s *stubResolver) Resolve(_ context.Context, query string) (spatial.Coordinate, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	if c, ok := s.results[query]; ok {
		return c, nil
	}

	if s.err != nil {
		return spatial.Coordinate{}, s.err
	}

	return spatial.Coordinate{}, &GeocodingError{Type: ErrorTypeNotFound, Provider: s.name, Message: "no results"}
}

func (s *stubResolver) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.queries...)
}

type failure struct {
	provider, query string
	err             error
}

// recordingObserver keeps every event it receives.
type recordingObserver struct {
	mu       sync.Mutex
	failures []failure
	hits     int
	misses   int
}

func (o *recordingObserver) ResolverFailed(provider, query string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.failures = append(o.failures, failure{provider: provider, query: query, err: err})
}

func (o *recordingObserver) CacheLookup(hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

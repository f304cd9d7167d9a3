// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode turns postcodes and free-text addresses into coordinates.
//
// Resolvers talk to a single upstream provider each. The Router picks which
// resolvers to try for a query, in order, and wraps the whole lookup with a
// TTL cache.
package geocode

import (
	"context"
	"log"

	"github.com/meridianmedia/prc/spatial"
)

// Resolver converts a location string into a coordinate using one provider.
// Any failure is reported as a *GeocodingError.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, query string) (spatial.Coordinate, error)
}

// QueryRole tells the cache how long a resolved coordinate stays fresh.
type QueryRole int

const (
	// RoleVisitor is an ad-hoc query typed by an end user.
	RoleVisitor QueryRole = iota
	// RoleBase is the configured base address, which rarely changes.
	RoleBase
)

func (r QueryRole) String() string {
	if r == RoleBase {
		return "base"
	}

	return "visitor"
}

// Observer is notified of lookup events. Implementations must be safe for
// concurrent use.
type Observer interface {
	// ResolverFailed is called once for every failed resolver attempt.
	ResolverFailed(provider, query string, err error)
	// CacheLookup is called for every cache read.
	CacheLookup(hit bool)
}

// LogObserver writes resolver failures to the standard logger.
type LogObserver struct{}

func (LogObserver) ResolverFailed(provider, query string, err error) {
	log.Printf("[prc] %s error for %q: %v", provider, query, err)
}

func (LogObserver) CacheLookup(bool) {}

// Observers fans events out to several observers.
type Observers []Observer

func (o Observers) ResolverFailed(provider, query string, err error) {
	for _, obs := range o {
		obs.ResolverFailed(provider, query, err)
	}
}

func (o Observers) CacheLookup(hit bool) {
	for _, obs := range o {
		obs.CacheLookup(hit)
	}
}

type nopObserver struct{}

func (nopObserver) ResolverFailed(string, string, error) {}
func (nopObserver) CacheLookup(bool)                     {}

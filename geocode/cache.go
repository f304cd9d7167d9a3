// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"crypto/md5" //nolint:gosec // cache key, not a security boundary
	"encoding/hex"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/meridianmedia/prc/spatial"
)

const (
	// DefaultVisitorTTL is how long an ad-hoc lookup stays cached.
	DefaultVisitorTTL = 24 * time.Hour
	// DefaultBaseTTL is how long the base address lookup stays cached.
	DefaultBaseTTL = 7 * DefaultVisitorTTL

	keyPrefix = "prc_geo_"
)

// Store is a key/value store with per-entry expiry. An expired entry must be
// reported as a miss; whether it is physically removed is up to the store.
type Store interface {
	Get(ctx context.Context, key string) (spatial.Coordinate, bool, error)
	Set(ctx context.Context, key string, c spatial.Coordinate, ttl time.Duration) error
}

// CacheKey derives the store key for a query: an MD5 digest of the
// lowercased, trimmed text.
func CacheKey(query string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(query)))) //nolint:gosec

	return keyPrefix + hex.EncodeToString(sum[:])
}

// Cache stores resolved coordinates by query text.
type Cache struct {
	store      Store
	observer   Observer
	VisitorTTL time.Duration
	BaseTTL    time.Duration
}

// NewCache wraps store with the default TTLs. observer may be nil.
func NewCache(store Store, observer Observer) *Cache {
	if observer == nil {
		observer = nopObserver{}
	}

	return &Cache{
		store:      store,
		observer:   observer,
		VisitorTTL: DefaultVisitorTTL,
		BaseTTL:    DefaultBaseTTL,
	}
}

// TTL returns the lifetime of an entry written for role.
func (c *Cache) TTL(role QueryRole) time.Duration {
	if role == RoleBase {
		return c.BaseTTL
	}

	return c.VisitorTTL
}

// Get returns the cached coordinate for query. Store failures count as a
// miss.
func (c *Cache) Get(ctx context.Context, query string) (spatial.Coordinate, bool) {
	coord, ok, err := c.store.Get(ctx, CacheKey(query))
	if err != nil {
		log.Printf("[prc] geocode cache read for %q: %v", query, err)

		ok = false
	}

	if ok && coord.Validate() != nil {
		ok = false
	}

	c.observer.CacheLookup(ok)

	if !ok {
		return spatial.Coordinate{}, false
	}

	return coord, true
}

// Put caches coord for query. A failed write is logged and otherwise
// ignored.
func (c *Cache) Put(ctx context.Context, query string, coord spatial.Coordinate, role QueryRole) {
	if err := c.store.Set(ctx, CacheKey(query), coord, c.TTL(role)); err != nil {
		log.Printf("[prc] geocode cache write for %q: %v", query, err)
	}
}

type memoryEntry struct {
	value     spatial.Coordinate
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Expired entries are skipped on read
// and dropped by Purge.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty store. now defaults to time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}

	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (spatial.Coordinate, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || !s.now().Before(e.expiresAt) {
		return spatial.Coordinate{}, false, nil
	}

	return e.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, c spatial.Coordinate, ttl time.Duration) error {
	s.mu.Lock()
	s.entries[key] = memoryEntry{value: c, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()

	return nil
}

// Purge removes expired entries and returns how many were dropped.
func (s *MemoryStore) Purge(_ context.Context) (int64, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64

	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			n++
		}
	}

	return n, nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

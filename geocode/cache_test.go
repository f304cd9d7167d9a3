// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/meridianmedia/prc/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	assert.Equal(t, CacheKey("FY1 1AA"), CacheKey("  fy1 1aa\t"))
	assert.NotEqual(t, CacheKey("FY1 1AA"), CacheKey("FY11AA"))
	assert.Equal(t, "prc_geo_bc2a9913c47bb7144a3cb64dcfc010f3", CacheKey("FY1 1AA"))
	assert.Len(t, CacheKey("anything"), len("prc_geo_")+32)
}

func TestCacheRoundTrip(t *testing.T) {
	clock := newFakeClock()
	cache := NewCache(NewMemoryStore(clock.Now), nil)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "FY1 1AA")
	assert.False(t, ok)

	cache.Put(ctx, "FY1 1AA", blackpool, RoleVisitor)

	c, ok := cache.Get(ctx, "fy1 1aa")
	require.True(t, ok)
	assert.Equal(t, blackpool, c)

	clock.Advance(DefaultVisitorTTL - time.Second)

	_, ok = cache.Get(ctx, "FY1 1AA")
	assert.True(t, ok, "still fresh just before the TTL")

	clock.Advance(time.Second)

	_, ok = cache.Get(ctx, "FY1 1AA")
	assert.False(t, ok, "expired exactly at the TTL")
}

func TestCacheTTLByRole(t *testing.T) {
	cache := NewCache(NewMemoryStore(nil), nil)

	assert.Equal(t, 24*time.Hour, cache.TTL(RoleVisitor))
	assert.Equal(t, 7*24*time.Hour, cache.TTL(RoleBase))

	cache.BaseTTL = 7 * cache.VisitorTTL
	cache.VisitorTTL = time.Hour
	assert.Equal(t, time.Hour, cache.TTL(RoleVisitor))
}

func TestCacheBaseEntriesOutliveVisitorTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewCache(NewMemoryStore(clock.Now), nil)
	ctx := context.Background()

	cache.Put(ctx, "Blackpool Tower", blackpool, RoleBase)
	cache.Put(ctx, "PR1 1AA", preston, RoleVisitor)

	clock.Advance(DefaultVisitorTTL + time.Hour)

	c, ok := cache.Get(ctx, "Blackpool Tower")
	require.True(t, ok, "base address survives past the visitor TTL")
	assert.Equal(t, blackpool, c)

	_, ok = cache.Get(ctx, "PR1 1AA")
	assert.False(t, ok)

	clock.Advance(DefaultBaseTTL - DefaultVisitorTTL - time.Hour)

	_, ok = cache.Get(ctx, "Blackpool Tower")
	assert.False(t, ok, "expired exactly at the base TTL")
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (spatial.Coordinate, bool, error) {
	return spatial.Coordinate{}, false, errors.New("disk on fire")
}

func (brokenStore) Set(context.Context, string, spatial.Coordinate, time.Duration) error {
	return errors.New("disk on fire")
}

func TestCacheStoreFailuresAreMisses(t *testing.T) {
	observer := &recordingObserver{}
	cache := NewCache(brokenStore{}, observer)

	cache.Put(context.Background(), "FY1 1AA", blackpool, RoleBase)

	_, ok := cache.Get(context.Background(), "FY1 1AA")
	assert.False(t, ok)
	assert.Equal(t, 1, observer.misses)
}

func TestMemoryStorePurge(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", blackpool, time.Hour))
	require.NoError(t, store.Set(ctx, "b", preston, 3*time.Hour))

	clock.Advance(2 * time.Hour)

	_, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, store.Len(), "expiry on read does not remove the entry")

	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()

	var wg sync.WaitGroup

	for i := range 16 {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			key := fmt.Sprintf("k%d", i%4)
			c := spatial.Coordinate{Lat: float64(i), Lon: float64(-i)}

			for range 100 {
				_ = store.Set(ctx, key, c, time.Hour)

				got, ok, _ := store.Get(ctx, key)
				if ok {
					// Entries are never torn: latitude and longitude come from the same write.
					assert.Equal(t, got.Lat, -got.Lon)
				}
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 4, store.Len())
}

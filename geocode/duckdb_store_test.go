// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDuckDBStore(t *testing.T, clock *fakeClock) *DuckDBStore {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	store := NewDuckDBStore(db, clock.Now)
	if err := store.CreateSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return store
}

func TestDuckDBStoreCreateSchema(t *testing.T) {
	store := setupDuckDBStore(t, newFakeClock())

	var tableName string

	err := store.DB().QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = 'geocode_cache'").Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "geocode_cache", tableName)

	// Creating the schema twice is harmless.
	require.NoError(t, store.CreateSchema())
}

func TestDuckDBStoreRoundTrip(t *testing.T) {
	clock := newFakeClock()
	store := setupDuckDBStore(t, clock)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, CacheKey("FY1 1AA"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, CacheKey("FY1 1AA"), blackpool, DefaultVisitorTTL))

	c, ok, err := store.Get(ctx, CacheKey("fy1 1aa"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, blackpool.Lat, c.Lat, 1e-9)
	assert.InDelta(t, blackpool.Lon, c.Lon, 1e-9)

	var cell int64

	err = store.DB().QueryRow("SELECT h3_res7 FROM geocode_cache WHERE key = ?", CacheKey("FY1 1AA")).Scan(&cell)
	require.NoError(t, err)

	want, err := blackpool.Cell(cellResolution)
	require.NoError(t, err)
	assert.Equal(t, int64(want), cell)

	clock.Advance(DefaultVisitorTTL)

	_, ok, err = store.Get(ctx, CacheKey("FY1 1AA"))
	require.NoError(t, err)
	assert.False(t, ok, "entries expire lazily on read")
}

func TestDuckDBStoreReplace(t *testing.T) {
	clock := newFakeClock()
	store := setupDuckDBStore(t, clock)
	ctx := context.Background()
	key := CacheKey("Preston")

	require.NoError(t, store.Set(ctx, key, blackpool, time.Hour))
	require.NoError(t, store.Set(ctx, key, preston, DefaultBaseTTL))

	c, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, preston.Lat, c.Lat, 1e-9)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	clock.Advance(2 * time.Hour)

	_, ok, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok, "the last write decides the expiry")
}

func TestDuckDBStorePurge(t *testing.T) {
	clock := newFakeClock()
	store := setupDuckDBStore(t, clock)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, CacheKey("FY1 1AA"), blackpool, DefaultVisitorTTL))
	require.NoError(t, store.Set(ctx, CacheKey("Preston"), preston, DefaultBaseTTL))

	clock.Advance(2 * DefaultVisitorTTL)

	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDuckDBStoreBehindCache(t *testing.T) {
	clock := newFakeClock()
	cache := NewCache(setupDuckDBStore(t, clock), nil)
	ctx := context.Background()

	cache.Put(ctx, "Blackpool Tower", blackpool, RoleBase)

	clock.Advance(6 * 24 * time.Hour)

	_, ok := cache.Get(ctx, "blackpool tower")
	assert.True(t, ok)

	clock.Advance(24 * time.Hour)

	_, ok = cache.Get(ctx, "blackpool tower")
	assert.False(t, ok)
}

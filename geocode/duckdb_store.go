// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/meridianmedia/prc/spatial"
)

// cellResolution is the H3 resolution stored next to each cached point
// (about 5 km² cells), enough to group lookups by district.
const cellResolution = 7

// DuckDBStore persists the geocode cache in a DuckDB table so it survives
// restarts.
type DuckDBStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewDuckDBStore creates a store over db. now defaults to time.Now.
func NewDuckDBStore(db *sql.DB, now func() time.Time) *DuckDBStore {
	if now == nil {
		now = time.Now
	}

	return &DuckDBStore{db: db, now: now}
}

// DB returns the underlying database connection.
func (s *DuckDBStore) DB() *sql.DB {
	return s.db
}

// CreateSchema creates the geocode_cache table.
func (s *DuckDBStore) CreateSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS geocode_cache (
			key VARCHAR PRIMARY KEY,
			lat DOUBLE NOT NULL,
			lon DOUBLE NOT NULL,
			h3_res7 UBIGINT,
			expires_at BIGINT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)

	return err
}

func (s *DuckDBStore) Get(ctx context.Context, key string) (spatial.Coordinate, bool, error) {
	var (
		c         spatial.Coordinate
		expiresAt int64
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT lat, lon, expires_at FROM geocode_cache WHERE key = ?`, key,
	).Scan(&c.Lat, &c.Lon, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return spatial.Coordinate{}, false, nil
	}

	if err != nil {
		return spatial.Coordinate{}, false, fmt.Errorf("reading cache entry: %w", err)
	}

	if expiresAt <= s.now().UnixMilli() {
		return spatial.Coordinate{}, false, nil
	}

	return c, true, nil
}

func (s *DuckDBStore) Set(ctx context.Context, key string, c spatial.Coordinate, ttl time.Duration) error {
	var cell sql.NullInt64
	if h, err := c.Cell(cellResolution); err == nil {
		cell = sql.NullInt64{Int64: int64(h), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO geocode_cache (key, lat, lon, h3_res7, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		key,
		c.Lat,
		c.Lon,
		cell,
		s.now().Add(ttl).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}

	return nil
}

// Purge deletes expired rows and returns how many were removed.
func (s *DuckDBStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM geocode_cache WHERE expires_at <= ?`, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}

	return res.RowsAffected()
}

// Count returns the number of rows, expired ones included.
func (s *DuckDBStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM geocode_cache`).Scan(&n); err != nil {
		return 0, err
	}

	return n, nil
}

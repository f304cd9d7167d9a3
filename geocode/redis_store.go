// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/meridianmedia/prc/spatial"
	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of the go-redis API the store needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStore shares the geocode cache between several instances. Expiry is
// left to Redis.
type RedisStore struct {
	client RedisClient
}

// NewRedisStore creates a store over client.
func NewRedisStore(client RedisClient) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient connects to the Redis server at addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (s *RedisStore) Get(ctx context.Context, key string) (spatial.Coordinate, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return spatial.Coordinate{}, false, nil
	}

	if err != nil {
		return spatial.Coordinate{}, false, fmt.Errorf("reading cache entry: %w", err)
	}

	var c spatial.Coordinate
	if err := json.Unmarshal(data, &c); err != nil {
		return spatial.Coordinate{}, false, fmt.Errorf("decoding cache entry: %w", err)
	}

	return c, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, c spatial.Coordinate, ttl time.Duration) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}

	return nil
}

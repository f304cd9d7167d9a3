// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

// Package spatial holds the coordinate type shared by the geocoders and the
// coverage evaluator, plus great-circle distance helpers.
package spatial

import (
	"fmt"
	"math"

	"github.com/uber/h3-go/v4"
)

const (
	// EarthRadiusKm is the mean Earth radius used by HaversineKm.
	EarthRadiusKm = 6371.0

	kmToMiles = 0.621371
)

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String returns a string representation of the Coordinate.
func (c Coordinate) String() string {
	return fmt.Sprintf("(%f, %f)", c.Lat, c.Lon)
}

// Validate checks that the coordinate lies within the valid WGS84 range.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 (got %f)", c.Lat)
	}

	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 (got %f)", c.Lon)
	}

	return nil
}

// DistanceKm returns the haversine distance to other in kilometres.
func (c Coordinate) DistanceKm(other Coordinate) float64 {
	return HaversineKm(c.Lat, c.Lon, other.Lat, other.Lon)
}

// Cell returns the H3 cell containing the coordinate at the given resolution.
func (c Coordinate) Cell(res int) (h3.Cell, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(c.Lat, c.Lon), res)
	if err != nil {
		return 0, fmt.Errorf("converting to h3 cell at res %d: %w", res, err)
	}

	return cell, nil
}

// HaversineKm calculates the great-circle distance between two points in
// kilometres.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// KmToMiles converts kilometres to statute miles.
func KmToMiles(km float64) float64 {
	return km * kmToMiles
}

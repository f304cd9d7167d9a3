// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

// Package coverage decides whether a postcode falls inside the configured
// service area.
package coverage

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridianmedia/prc/geocode"
	"github.com/meridianmedia/prc/postcode"
	"github.com/meridianmedia/prc/spatial"
)

// Geocoder resolves a location to a coordinate. *geocode.Router implements
// it.
type Geocoder interface {
	Geocode(ctx context.Context, query string, role geocode.QueryRole) (spatial.Coordinate, error)
}

// Result is the verdict of a single check. Distance is only set when the
// check ran in radius mode, expressed in Unit.
type Result struct {
	Inside   bool     `json:"inside"`
	Mode     Mode     `json:"mode"`
	Distance *float64 `json:"distance,omitempty"`
	Unit     Unit     `json:"unit,omitempty"`
}

// Recorder observes check outcomes. outcome is one of "inside", "outside",
// "invalid", "misconfigured" or "undetermined".
type Recorder interface {
	RecordCheck(mode Mode, outcome string)
}

// Evaluator runs coverage checks.
type Evaluator struct {
	geocoder Geocoder
	recorder Recorder
}

// NewEvaluator creates an evaluator. geocoder is only needed for radius
// mode and recorder may be nil.
func NewEvaluator(geocoder Geocoder, recorder Recorder) *Evaluator {
	return &Evaluator{geocoder: geocoder, recorder: recorder}
}

// Check decides whether raw is covered by cfg. Invalid input yields a
// *ValidationError, unusable settings a *ConfigurationError, and a radius
// check without coordinates an error wrapping ErrUndetermined.
func (e *Evaluator) Check(ctx context.Context, raw string, cfg Config) (*Result, error) {
	res, err := e.check(ctx, raw, cfg)
	e.record(cfg.Mode, res, err)

	return res, err
}

func (e *Evaluator) check(ctx context.Context, raw string, cfg Config) (*Result, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ValidationError{Message: "Postcode missing"}
	}

	switch cfg.Mode {
	case ModePrefix, "":
		return checkPrefix(raw, cfg)
	case ModeRadius:
		return e.checkRadius(ctx, raw, cfg)
	default:
		return nil, &ConfigurationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", cfg.Mode)}
	}
}

func checkPrefix(raw string, cfg Config) (*Result, error) {
	if len(postcode.ParsePrefixes(cfg.AllowedPrefixes)) == 0 {
		return nil, &ConfigurationError{Field: "allowed_prefixes", Message: "no postcode prefixes configured"}
	}

	return &Result{
		Inside: postcode.IsAllowedByPrefix(raw, cfg.AllowedPrefixes),
		Mode:   ModePrefix,
	}, nil
}

func (e *Evaluator) checkRadius(ctx context.Context, raw string, cfg Config) (*Result, error) {
	switch {
	case strings.TrimSpace(cfg.BaseAddress) == "":
		return nil, &ConfigurationError{Field: "base_address", Message: "base address is required in radius mode"}
	case cfg.Radius <= 0:
		return nil, &ConfigurationError{Field: "radius", Message: "radius must be positive"}
	case cfg.Unit != UnitMiles && cfg.Unit != UnitKm:
		return nil, &ConfigurationError{Field: "unit", Message: fmt.Sprintf("unknown unit %q", cfg.Unit)}
	case e.geocoder == nil:
		return nil, &ConfigurationError{Message: "no geocoder available for radius mode"}
	}

	base, err := e.geocoder.Geocode(ctx, cfg.BaseAddress, geocode.RoleBase)
	if err != nil {
		return nil, fmt.Errorf("%w: geocoding base address: %w", ErrUndetermined, err)
	}

	point, err := e.geocoder.Geocode(ctx, raw, geocode.RoleVisitor)
	if err != nil {
		return nil, fmt.Errorf("%w: geocoding %q: %w", ErrUndetermined, raw, err)
	}

	distance := base.DistanceKm(point)
	if cfg.Unit == UnitMiles {
		distance = spatial.KmToMiles(distance)
	}

	return &Result{
		Inside:   distance <= cfg.Radius,
		Mode:     ModeRadius,
		Distance: &distance,
		Unit:     cfg.Unit,
	}, nil
}

func (e *Evaluator) record(mode Mode, res *Result, err error) {
	if e.recorder == nil {
		return
	}

	if mode == "" {
		mode = ModePrefix
	}

	var outcome string

	switch {
	case err == nil && res.Inside:
		outcome = "inside"
	case err == nil:
		outcome = "outside"
	case IsValidationError(err):
		outcome = "invalid"
	case IsConfigurationError(err):
		outcome = "misconfigured"
	default:
		outcome = "undetermined"
	}

	e.recorder.RecordCheck(mode, outcome)
}

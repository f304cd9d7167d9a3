// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus counters for coverage checks, geocoder
// lookups and the HTTP surface.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meridianmedia/prc/coverage"
	"github.com/meridianmedia/prc/geocode"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the metrics of the service. It implements
// geocode.Observer and coverage.Recorder.
type Collector struct {
	gatherer prometheus.Gatherer

	Checks           *prometheus.CounterVec
	ResolverFailures *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDurations    *prometheus.HistogramVec
}

var (
	_ geocode.Observer  = (*Collector)(nil)
	_ coverage.Recorder = (*Collector)(nil)
)

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice on the same registry reuses the
// existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	checks, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prc_coverage_checks_total",
		Help: "Coverage checks, labeled by mode and outcome.",
	}, []string{"mode", "outcome"}))
	if err != nil {
		return nil, err
	}

	failures, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prc_geocoder_failures_total",
		Help: "Failed resolver attempts, labeled by provider and error type.",
	}, []string{"provider", "type"}))
	if err != nil {
		return nil, err
	}

	lookups, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prc_geocode_cache_lookups_total",
		Help: "Geocode cache reads, labeled by result (hit or miss).",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prc_http_requests_total",
		Help: "Handled HTTP requests, labeled by method, route and status code.",
	}, []string{"method", "route", "status"}))
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prc_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 20},
	}, []string{"method", "route"}))
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		Checks:           checks,
		ResolverFailures: failures,
		CacheLookups:     lookups,
		HTTPRequests:     requests,
		HTTPDurations:    durations,
	}, nil
}

// RecordCheck implements coverage.Recorder.
func (c *Collector) RecordCheck(mode coverage.Mode, outcome string) {
	if c == nil {
		return
	}

	c.Checks.WithLabelValues(string(mode), outcome).Inc()
}

// ResolverFailed implements geocode.Observer.
func (c *Collector) ResolverFailed(provider, _ string, err error) {
	if c == nil {
		return
	}

	c.ResolverFailures.WithLabelValues(provider, geocode.ErrorTypeOf(err).String()).Inc()
}

// CacheLookup implements geocode.Observer.
func (c *Collector) CacheLookup(hit bool) {
	if c == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}

	c.CacheLookups.WithLabelValues(result).Inc()
}

// Middleware records request counts and latencies. Requests that matched no
// route are labeled "unmatched" to keep cardinality bounded.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		if c == nil {
			return
		}

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.HTTPDurations.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}

		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}

		return existing, nil
	}

	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}

		existing, ok := are.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}

		return existing, nil
	}

	return vec, nil
}

// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrNoCoordinates is returned by the Router when no resolver produced a
// coordinate for a query.
var ErrNoCoordinates = errors.New("no coordinates found")

// GeocodingError describes why a single resolver failed.
type GeocodingError struct {
	Type     ErrorType
	Provider string
	Message  string
	Err      error

	// local is set when the query was rejected before any request was sent.
	local bool
}

// ErrorType classifies geocoding failures.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit the provider throttled the request.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded quota exhausted or access denied.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout the request did not complete in time.
	ErrorTypeTimeout
	// ErrorTypeNotFound the provider knows no such location.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest the provider rejected the request.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError no response was received.
	ErrorTypeNetworkError
	// ErrorTypeUnavailable the provider answered with a 502, 503 or 504.
	ErrorTypeUnavailable
	// ErrorTypeMalformedResponse the body is not the JSON shape we expect.
	ErrorTypeMalformedResponse
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeUnknown:           "unknown",
	ErrorTypeRateLimit:         "rate_limit",
	ErrorTypeQuotaExceeded:     "quota_exceeded",
	ErrorTypeTimeout:           "timeout",
	ErrorTypeNotFound:          "not_found",
	ErrorTypeInvalidRequest:    "invalid_request",
	ErrorTypeNetworkError:      "network_error",
	ErrorTypeUnavailable:       "unavailable",
	ErrorTypeMalformedResponse: "malformed_response",
}

func (t ErrorType) String() string {
	if name, ok := errorTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("ErrorType(%d)", int(t))
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

// ErrorTypeOf returns the classification of err, or ErrorTypeUnknown when
// err is not a GeocodingError.
func ErrorTypeOf(err error) ErrorType {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type
	}

	return ErrorTypeUnknown
}

// IsTransportError reports whether err means no usable response was
// received: a network failure or a timeout.
func IsTransportError(err error) bool {
	switch ErrorTypeOf(err) {
	case ErrorTypeNetworkError, ErrorTypeTimeout:
		return true
	default:
		return false
	}
}

// IsUpstreamError reports whether err was produced from a response the
// provider did send: a non-200 status or a malformed body. Queries rejected
// before sending are neither upstream nor transport errors.
func IsUpstreamError(err error) bool {
	var geoErr *GeocodingError
	if !errors.As(err, &geoErr) || geoErr.local {
		return false
	}

	return !IsTransportError(err)
}

// IsRateLimitError reports whether the provider throttled the request.
func IsRateLimitError(err error) bool {
	if ErrorTypeOf(err) == ErrorTypeRateLimit {
		return true
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

// IsTimeoutError reports whether err is a timeout.
func IsTimeoutError(err error) bool {
	if ErrorTypeOf(err) == ErrorTypeTimeout {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}

// classifyTransportError wraps an error returned by the fetcher.
func classifyTransportError(provider string, err error) *GeocodingError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &GeocodingError{
			Type:     ErrorTypeTimeout,
			Provider: provider,
			Message:  "request timed out",
			Err:      err,
		}
	}

	return &GeocodingError{
		Type:     ErrorTypeNetworkError,
		Provider: provider,
		Message:  "request failed",
		Err:      err,
	}
}

// ClassifyHTTPError maps a non-200 status code to a GeocodingError.
func ClassifyHTTPError(provider string, statusCode int) *GeocodingError {
	e := &GeocodingError{Provider: provider}

	switch statusCode {
	case http.StatusTooManyRequests:
		e.Type, e.Message = ErrorTypeRateLimit, "rate limit reached (HTTP 429)"
	case http.StatusForbidden, http.StatusUnauthorized:
		e.Type, e.Message = ErrorTypeQuotaExceeded, fmt.Sprintf("quota exceeded or access denied (HTTP %d)", statusCode)
	case http.StatusBadRequest:
		e.Type, e.Message = ErrorTypeInvalidRequest, "invalid request (HTTP 400)"
	case http.StatusNotFound:
		e.Type, e.Message = ErrorTypeNotFound, "location not found (HTTP 404)"
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		e.Type, e.Message = ErrorTypeUnavailable, fmt.Sprintf("service unavailable (HTTP %d)", statusCode)
	default:
		e.Type, e.Message = ErrorTypeUnknown, fmt.Sprintf("HTTP %d", statusCode)
	}

	return e
}

// emptyQuery rejects a blank query without contacting the provider.
func emptyQuery(provider, message string) *GeocodingError {
	return &GeocodingError{
		Type:     ErrorTypeInvalidRequest,
		Provider: provider,
		Message:  message,
		local:    true,
	}
}

func malformed(provider, format string, args ...any) *GeocodingError {
	return &GeocodingError{
		Type:     ErrorTypeMalformedResponse,
		Provider: provider,
		Message:  fmt.Sprintf(format, args...),
	}
}

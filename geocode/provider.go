// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ProviderOptions configures how a resolver identifies itself upstream.
type ProviderOptions struct {
	// Version of the application, sent in the User-Agent.
	Version string

	// ContactEmail is appended to the free-text User-Agent, as the
	// Nominatim usage policy asks.
	ContactEmail string

	// ContactEmailFunc, when set, is asked for the contact email on every
	// request and wins over ContactEmail when it returns a non-empty value.
	ContactEmailFunc func() string

	// SiteURL of the deployment, sent as Referer when set.
	SiteURL string

	// BaseURL overrides the provider endpoint (tests, self-hosted mirrors).
	BaseURL string

	// Timeout bounds a single request; zero picks the provider default.
	Timeout time.Duration
}

func (o ProviderOptions) version() string {
	if o.Version == "" {
		return "dev"
	}

	return o.Version
}

func (o ProviderOptions) contactEmail() string {
	if o.ContactEmailFunc != nil {
		if email := o.ContactEmailFunc(); email != "" {
			return email
		}
	}

	return o.ContactEmail
}

func (o ProviderOptions) timeout(def time.Duration) time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}

	return def
}

func (o ProviderOptions) endpoint(def string) string {
	if o.BaseURL != "" {
		return strings.TrimRight(o.BaseURL, "/")
	}

	return def
}

// headers returns the common request headers with the given User-Agent.
func (o ProviderOptions) headers(userAgent string) map[string]string {
	h := map[string]string{
		"Accept":     "application/json",
		"User-Agent": userAgent,
	}
	if o.SiteURL != "" {
		h["Referer"] = o.SiteURL
	}

	return h
}

// coordinateValue decodes a latitude or longitude sent either as a JSON
// number or as a numeric string.
type coordinateValue struct {
	value float64
	set   bool
}

func (v *coordinateValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("invalid coordinate %q: %w", s, err)
		}

		v.value, v.set = f, true

		return nil
	}

	if err := json.Unmarshal(b, &v.value); err != nil {
		return err
	}

	v.set = true

	return nil
}

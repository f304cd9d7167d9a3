// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package httputils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxBodySize caps how much of a response body is buffered. Geocoding
// answers are a few kilobytes at most.
const maxBodySize = 1 << 20

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Fetcher performs a single outbound GET request. A returned error always
// means no response was received (transport failure or timeout); any status
// code, including non-2xx ones, comes back as a Response.
type Fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (*Response, error)
}

// Client is the net/http backed Fetcher.
type Client struct {
	HTTP *http.Client
}

// NewClient creates a Fetcher over the given transport. A nil transport uses
// http.DefaultTransport.
func NewClient(transport http.RoundTripper) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{HTTP: &http.Client{Transport: transport}}
}

// Get implements Fetcher. The timeout bounds the whole exchange, body
// included; zero means no bound beyond ctx.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, redactURLError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// redactURLError strips credentials from the request URL that net/http
// embeds in transport errors.
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redact(urlErr.URL)
	}

	return err
}

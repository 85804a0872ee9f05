// Package clients holds the thin HTTP clients for the four upstream
// services. Their only job is fetching raw JSON given credentials: bounded
// timeouts, no retries, typed decoding, nothing else.
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotConfigured is returned when a client is asked to call a service
// whose URL or credentials are missing from configuration.
var ErrNotConfigured = errors.New("service not configured")

// ErrNotFound is returned when the upstream reports the requested library
// or item does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnavailable wraps transport-level failures, including timeouts, which
// are not distinguished from other I/O errors and never retried here.
var ErrUnavailable = errors.New("service unavailable")

type httpClient struct {
	baseURL string
	http    *http.Client
	headers map[string]string
}

func newHTTPClient(baseURL string, timeout time.Duration, headers map[string]string) *httpClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		headers: headers,
	}
}

// getJSON fetches path with query params and decodes the body into dest.
func (c *httpClient) getJSON(ctx context.Context, path string, params url.Values, dest any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if params != nil {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

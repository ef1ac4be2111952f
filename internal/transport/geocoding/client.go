// Package geocoding implements the HTTP geocoding providers used to resolve
// a town name to coordinates.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/commu-practical/helpmap/internal/metrics"
)

// Config holds settings shared by all providers.
type Config struct {
	Endpoint   string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client // optional, defaults to a plain client
}

type client struct {
	name      string
	endpoint  string
	userAgent string
	timeout   time.Duration
	http      *http.Client
}

func newClient(name string, cfg Config) client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return client{
		name:      name,
		endpoint:  cfg.Endpoint,
		userAgent: cfg.UserAgent,
		timeout:   timeout,
		http:      hc,
	}
}

// getJSON issues a GET with the per-call timeout and decodes a 2xx JSON body into out.
func (c client) getJSON(ctx context.Context, query url.Values, out any) (err error) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		if err != nil {
			outcome = "error"
		}
		metrics.ObserveUpstream(c.name, outcome, start)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", c.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned status %d", c.name, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.name, err)
	}
	return nil
}

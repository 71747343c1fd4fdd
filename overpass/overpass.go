// Package overpass queries an Overpass API endpoint for bulk, read-only
// element data. Queries are idempotent, so failed requests are retried
// with a wait in between, unlike the editing API which never retries.
package overpass

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/omniscale/go-osmapi/config"
	"github.com/omniscale/go-osmapi/logging"
)

var log = logging.NewLogger("overpass")

type Client struct {
	url       string
	userAgent string
	retries   int
	retryWait time.Duration
	client    *http.Client
}

// NewClient returns a client for the Overpass endpoint of conf. The
// Overpass URL must be configured.
func NewClient(conf *config.Config) (*Client, error) {
	if conf.Overpass.URL == "" {
		return nil, errors.New("no overpass url configured")
	}
	client := &http.Client{
		Timeout: time.Duration(conf.Timeout),
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
		},
	}
	return &Client{
		url:       conf.Overpass.URL,
		userAgent: conf.UserAgent,
		retries:   conf.Overpass.Retries,
		retryWait: time.Duration(conf.Overpass.RetryWait),
		client:    client,
	}, nil
}

// Query runs an Overpass QL query and returns the raw response body.
// Transient failures (network errors, 429, 5xx) are retried up to the
// configured number of times.
func (c *Client) Query(ctx context.Context, query string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			log.Warnf("overpass query failed, retry %d/%d in %s: %s",
				attempt, c.retries, c.retryWait, lastErr)
			select {
			case <-time.After(c.retryWait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		body, retry, err := c.query(ctx, query)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}
	return nil, errors.Wrapf(lastErr, "overpass query failed after %d retries", c.retries)
}

func (c *Client) query(ctx context.Context, query string) (body []byte, retry bool, err error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, "POST", c.url,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == 200:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, true, err
		}
		return body, false, nil
	case resp.StatusCode == 429 || resp.StatusCode >= 500:
		// rate limited or overloaded, worth waiting for
		return nil, true, errors.Errorf("status %d from %s", resp.StatusCode, c.url)
	default:
		raw, _ := io.ReadAll(resp.Body)
		return nil, false, errors.Errorf("status %d from %s: %s",
			resp.StatusCode, c.url, strings.TrimSpace(string(raw)))
	}
}

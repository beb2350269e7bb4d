package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single ping.
const DefaultTimeout = 10 * time.Second

// Client pings search engines over HTTP with a fixed User-Agent.
type Client struct {
	client    *http.Client
	userAgent string
}

// New creates a Client. A zero timeout means DefaultTimeout.
func New(userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// PingURL substitutes the query-escaped sitemap URL into the %s of endpoint.
func PingURL(endpoint, sitemapURL string) (string, error) {
	if !strings.Contains(endpoint, "%s") {
		return "", fmt.Errorf("ping endpoint %q has no %%s placeholder", endpoint)
	}
	return strings.Replace(endpoint, "%s", url.QueryEscape(sitemapURL), 1), nil
}

// Notify sends a GET to the endpoint with the sitemap URL filled in. Any
// non-2xx response is an error.
func (c *Client) Notify(ctx context.Context, endpoint, sitemapURL string) error {
	target, err := PingURL(endpoint, sitemapURL)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinging %s: %w", target, err)
	}
	defer resp.Body.Close()
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	return nil
}

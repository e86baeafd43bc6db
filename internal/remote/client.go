// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// defaultTimeout bounds a single repository request.
	defaultTimeout = 60 * time.Second

	// maxMetadataBytes caps the size of a maven-metadata.xml response.
	maxMetadataBytes = 4 << 20
)

type (
	// Client performs GET requests against Maven repositories.
	Client struct {
		httpClient *http.Client
		userAgent  string
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)
)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxies.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// NewClient creates a Client with a 60s timeout and a "mavensync/dev" user agent.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "mavensync/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open issues a GET for rawURL and returns the body of a 200 response. The
// caller closes the returned reader. Any other outcome is a DownloadError.
func (c *Client) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, &DownloadError{URL: redactURL(rawURL), Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: redactURL(rawURL), Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close() // read-only response body
		return nil, &DownloadError{URL: redactURL(rawURL), StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

// redactURL strips credentials, query parameters and fragments from a URL for
// inclusion in error messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// Package pybossa imports project exports from a Pybossa-style crowdsourcing
// API: task, task-run, and result archives plus the project's question and
// answer configuration. Caller cookies are forwarded opaquely so the upstream
// API performs its own authentication.
package pybossa

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"consensor/internal/config"
	"consensor/pkg/archive"
)

// Data types exported by the upstream API.
const (
	DataTask    = "task"
	DataTaskRun = "task_run"
	DataResult  = "result"
)

// Export formats accepted by the upstream API.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Auth carries the caller's credentials, forwarded verbatim to the upstream.
type Auth struct {
	Cookies []*http.Cookie
}

// UpstreamResponse retains the response metadata needed for header mirroring
// on the outbound service response.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
}

// Client issues requests against the upstream export API.
type Client struct {
	http        *http.Client
	rewriteHost string
	logger      *slog.Logger
}

// NewClient creates a Client with the configured timeout and optional
// localhost rewrite target. Redirects are followed.
func NewClient(cfg *config.UpstreamConfig, logger *slog.Logger) *Client {
	return &Client{
		http:        &http.Client{Timeout: cfg.TimeoutDuration()},
		rewriteHost: cfg.LocalhostRewrite,
		logger:      logger.With("system", "pybossa"),
	}
}

// fetchExport performs one parametrized export fetch and parses the response
// body as a ZIP archive.
func (c *Client) fetchExport(ctx context.Context, apiURL, dataType, format string, auth Auth) (*zip.Reader, *UpstreamResponse, error) {
	target, err := c.exportURL(apiURL, dataType, format)
	if err != nil {
		return nil, nil, err
	}

	c.logger.Debug("requesting export", "type", dataType, "format", format)
	body, meta, err := c.get(ctx, target, auth)
	if err != nil {
		return nil, nil, err
	}
	c.logger.Debug("export response", "type", dataType, "status", meta.StatusCode)

	zr, err := archive.Open(body)
	if err != nil {
		return nil, nil, fmt.Errorf("export %s: %w", dataType, err)
	}
	return zr, meta, nil
}

func (c *Client) exportURL(apiURL, dataType, format string) (string, error) {
	u, err := url.Parse(c.rewriteLocalhost(apiURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadExportURL, err)
	}
	q := u.Query()
	q.Set("type", dataType)
	q.Set("format", format)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) get(ctx context.Context, rawURL string, auth Auth) ([]byte, *UpstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	for _, cookie := range auth.Cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, nil, fmt.Errorf("%w: status %d from %s", ErrUpstream, resp.StatusCode, req.URL.Host)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return body, &UpstreamResponse{StatusCode: resp.StatusCode, Header: resp.Header.Clone()}, nil
}

// rewriteLocalhost redirects loopback export URLs to the configured internal
// host, preserving the port. Used in containerized deployments where the
// caller-visible hostname is not routable from this service.
func (c *Client) rewriteLocalhost(rawURL string) string {
	if c.rewriteHost == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() != "localhost" {
		return rawURL
	}
	host := c.rewriteHost
	if port := u.Port(); port != "" {
		host = host + ":" + port
	}
	u.Host = host
	c.logger.Debug("rewrote localhost export url", "host", host)
	return u.String()
}

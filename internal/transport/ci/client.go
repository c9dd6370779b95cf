// Package ci fetches console output from CI servers (Jenkins, GitLab) over HTTP.
package ci

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/kailas-cloud/remedex/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	defaultMaxBody = 32 << 20
)

// ErrTimeout marks a request that exceeded its deadline.
var ErrTimeout = fmt.Errorf("ci: %w", domain.ErrUpstreamTimeout)

// Config holds credentials and TLS settings.
type Config struct {
	User               string
	Password           string
	CABundle           string
	InsecureSkipVerify bool
	Timeout            time.Duration
	MaxBodyBytes       int64
}

// Response is the status and body of a console fetch.
type Response struct {
	StatusCode int
	Body       string
}

// Client performs authenticated GETs against CI endpoints.
type Client struct {
	http     *http.Client
	user     string
	password string
	maxBody  int64
}

// NewClient builds a client. A CA bundle that cannot be read is an error.
func NewClient(cfg Config) (*Client, error) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.InsecureSkipVerify {
		tlsCfg.InsecureSkipVerify = true //nolint:gosec // opt-in for self-signed CI servers
	}
	if cfg.CABundle != "" {
		pem, err := os.ReadFile(cfg.CABundle)
		if err != nil {
			return nil, fmt.Errorf("read ca bundle: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("ca bundle %s has no certificates", cfg.CABundle)
		}
		tlsCfg.RootCAs = pool
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg

	return &Client{
		http:     &http.Client{Timeout: timeout, Transport: transport},
		user:     cfg.User,
		password: cfg.Password,
		maxBody:  maxBody,
	}, nil
}

// Get fetches url. Non-2xx statuses are returned in Response, not as errors.
// Deadline failures wrap ErrTimeout.
func (c *Client) Get(ctx context.Context, url string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, classify(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return Response{}, classify(err)
	}
	return Response{StatusCode: resp.StatusCode, Body: string(body)}, nil
}

// FetchConsole is Get flattened to status and body.
func (c *Client) FetchConsole(ctx context.Context, url string) (int, string, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, resp.Body, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

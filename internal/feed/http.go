package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	pkgcatalog "github.com/loftloot/loftloot/pkg/catalog"
)

const maxFeedBytes = 32 << 20

// HTTPConfig configures HTTPSource.
type HTTPConfig struct {
	URL     string
	Format  pkgcatalog.Format
	Timeout time.Duration
	Retries int
	// BaseBackoff is the first retry delay; later delays double.
	BaseBackoff time.Duration
	// MaxBytes caps the response body. Zero means 32 MiB.
	MaxBytes int64
}

// HTTPSource downloads the feed over HTTP with bounded retries.
type HTTPSource struct {
	cfg    HTTPConfig
	client *retryablehttp.Client
	logger *zap.Logger
}

// NewHTTPSource returns a source for cfg.URL.
func NewHTTPSource(cfg HTTPConfig, logger *zap.Logger) *HTTPSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 250 * time.Millisecond
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = maxFeedBytes
	}

	s := &HTTPSource{cfg: cfg, logger: logger}

	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = cfg.Timeout
	client.RetryMax = cfg.Retries
	client.RetryWaitMin = cfg.BaseBackoff
	client.RetryWaitMax = cfg.BaseBackoff << min(cfg.Retries, 6)
	client.Backoff = retryablehttp.DefaultBackoff
	client.CheckRetry = checkRetry
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logger.Debug("retrying feed fetch",
				zap.Int("attempt", attempt),
				zap.String("url", req.URL.Redacted()),
			)
		}
	}
	s.client = client
	return s
}

func (s *HTTPSource) Name() string { return "http:" + s.cfg.URL }

// Fetch downloads and decodes the feed. Transport errors and retryable
// statuses (429, 5xx) are retried with exponential backoff.
func (s *HTTPSource) Fetch(ctx context.Context) (*pkgcatalog.Feed, error) {
	body, contentType, err := s.get(ctx)
	if err != nil {
		return nil, pkgcatalog.NewFeedError(pkgcatalog.CodeFeedUnavailable, "fetch "+s.cfg.URL, err)
	}
	return pkgcatalog.Decode(body, s.format(contentType))
}

func (s *HTTPSource) get(ctx context.Context) (body []byte, contentType string, err error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", errors.New("unexpected status " + resp.Status)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > s.cfg.MaxBytes {
		return nil, "", fmt.Errorf("feed too large: exceeds %d bytes", s.cfg.MaxBytes)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (s *HTTPSource) format(contentType string) pkgcatalog.Format {
	if s.cfg.Format != "" {
		return s.cfg.Format
	}
	if strings.Contains(contentType, "yaml") {
		return pkgcatalog.FormatYAML
	}
	return pkgcatalog.FormatFromPath(s.cfg.URL)
}

// checkRetry retries transport failures and the statuses isRetryableStatus
// names, and stops as soon as ctx is done.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return isRetryableStatus(resp.StatusCode), nil
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

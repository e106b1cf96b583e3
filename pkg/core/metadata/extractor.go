// Package metadata fetches a page and extracts the title, description,
// preview image and favicon used to pre-fill the link form.
package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (compatible; HKunLinks/1.0; +https://hkun.links)"
	DefaultTimeout   = 10 * time.Second

	maxBodyBytes = 2 << 20
)

// Extractor fetches remote pages. It is safe for concurrent use.
type Extractor struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	logger    *zap.Logger
}

type Option func(*Extractor)

func WithHTTPClient(c *http.Client) Option { return func(e *Extractor) { e.client = c } }
func WithUserAgent(ua string) Option       { return func(e *Extractor) { e.userAgent = ua } }
func WithTimeout(d time.Duration) Option   { return func(e *Extractor) { e.timeout = d } }
func WithLogger(l *zap.Logger) Option      { return func(e *Extractor) { e.logger = l } }

func New(opts ...Option) *Extractor {
	e := &Extractor{
		client:    http.DefaultClient,
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.userAgent == "" {
		e.userAgent = DefaultUserAgent
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	return e
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: URL is required", domain.ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute http(s) URL", domain.ErrInvalidURL, raw)
	}
	return u, nil
}

// Fetch retrieves rawURL and extracts its metadata. Any network, timeout or
// status failure is reported as domain.ErrMetadataUnavailable and no partial
// result is returned.
func (e *Extractor) Fetch(ctx context.Context, rawURL string) (*domain.Metadata, error) {
	pageURL, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug("metadata fetch failed", zap.String("url", pageURL.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrMetadataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.logger.Debug("metadata fetch bad status", zap.String("url", pageURL.String()), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrMetadataUnavailable, resp.StatusCode)
	}

	md, err := Extract(io.LimitReader(resp.Body, maxBodyBytes), pageURL)
	if err != nil {
		e.logger.Debug("metadata read failed", zap.String("url", pageURL.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrMetadataUnavailable, err)
	}
	return md, nil
}

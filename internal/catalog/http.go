package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/logging"
	"github.com/litescript/ls-stellar/internal/version"
)

const (
	// DefaultTimeout for a single HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond paces tile requests.
	DefaultRequestsPerSecond = 8

	// DefaultMaxBodyBytes bounds one downloaded tile or manifest.
	DefaultMaxBodyBytes = 64 * maxLineBytes
)

// HTTPSource fetches a dataset over HTTP. A URL ending in .ndjson or .gz
// is fetched as one file; anything else is treated as a tile directory
// with a manifest.
type HTTPSource struct {
	client  *http.Client
	url     string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *logging.Logger
	maxBody int64
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTPSource) {
		h.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTPSource) {
		h.client = client
	}
}

// WithRateLimit caps requests per second. Non-positive means unlimited.
func WithRateLimit(perSecond float64) HTTPOption {
	return func(h *HTTPSource) {
		if perSecond <= 0 {
			h.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		h.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithMaxBodyBytes bounds each response body. Non-positive values are
// ignored.
func WithMaxBodyBytes(n int64) HTTPOption {
	return func(h *HTTPSource) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

// WithHTTPLogger sets the source logger.
func WithHTTPLogger(l *logging.Logger) HTTPOption {
	return func(h *HTTPSource) {
		h.logger = l
	}
}

// NewHTTPSource creates a source for url.
func NewHTTPSource(url string, opts ...HTTPOption) *HTTPSource {
	h := &HTTPSource{
		url:     strings.TrimRight(url, "/"),
		timeout: DefaultTimeout,
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		logger:  logging.Discard(),
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.client == nil {
		h.client = &http.Client{
			Timeout: h.timeout,
		}
	}
	return h
}

// URL returns the configured location.
func (h *HTTPSource) URL() string {
	return h.url
}

func (h *HTTPSource) String() string {
	return h.url
}

// Load fetches and decodes the dataset.
func (h *HTTPSource) Load(ctx context.Context) ([]astro.Star, error) {
	if strings.HasSuffix(h.url, ".ndjson") || strings.HasSuffix(h.url, ".gz") {
		stars, stats, err := h.fetchStars(ctx, h.url)
		if err != nil {
			return nil, err
		}
		report(h.logger, h.url, stats)
		if len(stars) == 0 {
			return nil, fmt.Errorf("%s: %w", h.url, ErrNoStars)
		}
		return stars, nil
	}

	body, err := h.fetch(ctx, h.url+"/"+ManifestName)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	h.logger.Info("fetching %d tiles from %s", len(m.Tiles), h.url)

	var (
		stars []astro.Star
		total DecodeStats
	)
	for _, key := range m.Tiles {
		s, stats, err := h.fetchStars(ctx, h.url+"/"+key+".ndjson.gz")
		if err != nil {
			return nil, fmt.Errorf("tile %s: %w", key, err)
		}
		stars = append(stars, s...)
		total.Add(stats)
	}

	report(h.logger, h.url, total)
	if len(stars) == 0 {
		return nil, fmt.Errorf("%s: %w", h.url, ErrNoStars)
	}
	return stars, nil
}

func (h *HTTPSource) fetchStars(ctx context.Context, url string) ([]astro.Star, DecodeStats, error) {
	body, err := h.fetch(ctx, url)
	if err != nil {
		return nil, DecodeStats{}, err
	}
	return Decode(bytes.NewReader(body))
}

func (h *HTTPSource) fetch(ctx context.Context, url string) ([]byte, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "ls-stellar/"+version.Version)
	req.Header.Set("Accept", "application/x-ndjson, application/json, application/gzip")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status code: %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > h.maxBody {
		return nil, fmt.Errorf("fetch %s: response exceeds %d bytes", url, h.maxBody)
	}
	return body, nil
}

// Package molit provides clients for the MOLIT open-data services on data.go.kr:
// the real-estate trade feeds (RTMS) and the building ledger (BldRgstService).
//
// Both services speak XML and share one service key. Requests go through a shared
// token-bucket limiter so concurrent registry lookups stay below the portal quota.
package molit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/eshaffer321/realestate-detective-backend/internal/adapters/providers"
)

// Default endpoints
const (
	DefaultFeedBaseURL     = "http://openapi.molit.go.kr/OpenAPI_ToolInstallPackage/service/rest/RTMSOBJSvc"
	DefaultRegistryBaseURL = "http://apis.data.go.kr/1613000/BldRgstService_v2"
)

// ErrAPIResult is returned when the service answers with a non-success result code
var ErrAPIResult = fmt.Errorf("%w: api result code", providers.ErrUpstream)

// ErrMissingServiceKey is returned when no service key is configured
var ErrMissingServiceKey = errors.New("molit service key is required")

// ClientConfig holds settings shared by the feed and registry clients
type ClientConfig struct {
	ServiceKey        string
	FeedBaseURL       string
	RegistryBaseURL   string
	Timeout           time.Duration // per HTTP request (default: 10s)
	RequestsPerSecond float64       // default: 10
	Burst             int           // default: 5
	RowsPerPage       int           // feed page size (default: 1000)
	MaxPages          int           // feed page cap (default: 20)
	RegistryRows      int           // ledger rows per lookup (default: 10)
}

// DefaultClientConfig returns sensible defaults
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		FeedBaseURL:       DefaultFeedBaseURL,
		RegistryBaseURL:   DefaultRegistryBaseURL,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 10,
		Burst:             5,
		RowsPerPage:       1000,
		MaxPages:          20,
		RegistryRows:      10,
	}
}

func (c ClientConfig) withDefaults() ClientConfig {
	d := DefaultClientConfig()
	if c.FeedBaseURL == "" {
		c.FeedBaseURL = d.FeedBaseURL
	}
	if c.RegistryBaseURL == "" {
		c.RegistryBaseURL = d.RegistryBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = d.RequestsPerSecond
	}
	if c.Burst <= 0 {
		c.Burst = d.Burst
	}
	if c.RowsPerPage <= 0 {
		c.RowsPerPage = d.RowsPerPage
	}
	if c.MaxPages <= 0 {
		c.MaxPages = d.MaxPages
	}
	if c.RegistryRows <= 0 {
		c.RegistryRows = d.RegistryRows
	}
	return c
}

// transport performs rate-limited GET requests against data.go.kr
type transport struct {
	httpClient *http.Client
	serviceKey string
	limiter    *rate.Limiter
	rateLimit  time.Duration
	logger     *slog.Logger
}

func newTransport(cfg ClientConfig, limiter *rate.Limiter, logger *slog.Logger) *transport {
	if logger == nil {
		logger = slog.Default()
	}
	if limiter == nil {
		limiter = NewLimiter(cfg)
	}
	return &transport{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		serviceKey: decodeServiceKey(cfg.ServiceKey),
		limiter:    limiter,
		rateLimit:  time.Duration(float64(time.Second) / cfg.RequestsPerSecond),
		logger:     logger,
	}
}

// NewLimiter builds the token bucket shared by clients created from cfg
func NewLimiter(cfg ClientConfig) *rate.Limiter {
	cfg = cfg.withDefaults()
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
}

// decodeServiceKey accepts both the "encoding" and "decoding" keys issued by the
// portal. url.Values re-encodes on the way out.
func decodeServiceKey(key string) string {
	key = strings.TrimSpace(key)
	if strings.Contains(key, "%") {
		if decoded, err := url.QueryUnescape(key); err == nil {
			return decoded
		}
	}
	return key
}

func (t *transport) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if t.serviceKey == "" {
		return nil, ErrMissingServiceKey
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("serviceKey", t.serviceKey)
	reqURL := endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", providers.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", providers.ErrUpstream, err)
	}

	t.logger.Debug("molit request",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", providers.ErrUpstream, resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

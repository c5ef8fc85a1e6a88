// Package client talks to a running runway daemon over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/theirongolddev/runway/internal/daemon"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/scenario"
)

const (
	requestTimeout  = 10 * time.Second
	maxBodySize     = 1 << 20 // 1 MB
	defaultMaxTries = 4
	userAgent       = "runway-client/1.0"
)

var (
	// ErrUnavailable indicates the daemon could not be reached or kept
	// failing with server errors.
	ErrUnavailable = errors.New("daemon unavailable")
	// ErrBadRequest indicates the daemon rejected the request.
	ErrBadRequest = errors.New("daemon rejected request")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)

// Client calls the daemon API.
type Client struct {
	baseURL  string
	http     *http.Client
	log      *zap.Logger
	maxTries uint
	interval time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger logs retries to l.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithRetry sets the attempt limit and the first backoff interval.
func WithRetry(maxTries uint, initial time.Duration) Option {
	return func(c *Client) {
		if maxTries > 0 {
			c.maxTries = maxTries
		}
		if initial > 0 {
			c.interval = initial
		}
	}
}

// New creates a client for the daemon at addr. A bare host:port is treated
// as an http URL.
func New(addr string, opts ...Option) (*Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("daemon address is required")
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid daemon address %q", addr)
	}

	c := &Client{
		baseURL:  strings.TrimRight(u.String(), "/"),
		http:     &http.Client{},
		log:      zap.NewNop(),
		maxTries: defaultMaxTries,
		interval: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the daemon root URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, "", nil)
}

// Status returns the daemon status.
func (c *Client) Status(ctx context.Context) (*daemon.Status, error) {
	var st daemon.Status
	if err := c.do(ctx, http.MethodGet, "/v1/status", nil, "", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Forecast returns the daemon's current snapshot.
func (c *Client) Forecast(ctx context.Context) (*scenario.Snapshot, error) {
	var snap scenario.Snapshot
	if err := c.do(ctx, http.MethodGet, "/v1/forecast", nil, "", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Submit replaces the daemon's input.
func (c *Client) Submit(ctx context.Context, in forecast.Input) (*scenario.Snapshot, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encoding input: %w", err)
	}
	var snap scenario.Snapshot
	if err := c.do(ctx, http.MethodPost, "/v1/forecast", body, "application/json", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SubmitFields sends raw field text for the daemon to parse with its own
// parse mode. Fields not present keep the daemon's current value.
func (c *Client) SubmitFields(ctx context.Context, fields map[forecast.Field]string) (*scenario.Snapshot, error) {
	form := url.Values{}
	for f, raw := range fields {
		form.Set(f.String(), raw)
	}
	var snap scenario.Snapshot
	err := c.do(ctx, http.MethodPost, "/v1/forecast", []byte(form.Encode()),
		"application/x-www-form-urlencoded", &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ApplyPreset switches the daemon to a named preset.
func (c *Client) ApplyPreset(ctx context.Context, name string) (*scenario.Snapshot, error) {
	var snap scenario.Snapshot
	path := "/v1/presets/" + url.PathEscape(name)
	if err := c.do(ctx, http.MethodPost, path, nil, "", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Presets lists the daemon's presets.
func (c *Client) Presets(ctx context.Context) ([]forecast.Preset, error) {
	var out []forecast.Preset
	if err := c.do(ctx, http.MethodGet, "/v1/presets", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Alerts returns the alerts raised for the current snapshot.
func (c *Client) Alerts(ctx context.Context) ([]model.Alert, error) {
	var out []model.Alert
	if err := c.do(ctx, http.MethodGet, "/v1/alerts", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Events returns the buffered recompute events, oldest first.
func (c *Client) Events(ctx context.Context) ([]daemon.Event, error) {
	var out []daemon.Event
	if err := c.do(ctx, http.MethodGet, "/v1/events", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do performs a request with retries. Connection failures and 5xx responses
// are retried; everything else is returned immediately.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.interval
	policy.MaxInterval = c.interval * 10

	notify := func(err error, d time.Duration) {
		c.log.Debug("retrying daemon request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("backoff", d),
			zap.Error(err),
		)
	}

	op := func() ([]byte, error) {
		return c.attempt(ctx, method, path, body, contentType)
	}

	data, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify),
	)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s response: %w", path, err)
	}
	return nil
}

func (c *Client) attempt(ctx context.Context, method, path string, body []byte, contentType string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s %s returned %d%s", ErrUnavailable, method, path, resp.StatusCode, errorDetail(data))
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(fmt.Errorf("%s: %w%s", path, ErrNotFound, errorDetail(data)))
	default:
		return nil, backoff.Permanent(fmt.Errorf("%w: status %d%s", ErrBadRequest, resp.StatusCode, errorDetail(data)))
	}
}

// errorDetail extracts the daemon's error message from a response body.
func errorDetail(data []byte) string {
	var er daemon.ErrorResponse
	if err := json.Unmarshal(data, &er); err != nil || er.Error == "" {
		return ""
	}
	if er.Details != "" {
		return ": " + er.Error + ": " + er.Details
	}
	return ": " + er.Error
}

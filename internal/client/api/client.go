// Package api is the HTTP client of the employee REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Operation names, used for throttling, logging and metrics.
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpImport = "import"
	OpExport = "export"
	OpPing   = "ping"
)

const defaultTimeout = 10 * time.Second

var (
	// ErrRateLimited is returned when the API answers 429 or the local throttle refuses a call.
	ErrRateLimited = errors.New("too many requests")
	// ErrNotFound is returned when the API answers 404.
	ErrNotFound = errors.New("employee not found")
)

// StatusError is a non-2xx, non-429 API response.
type StatusError struct {
	Op      string // Operation that failed
	Code    int    // HTTP status code
	Message string // Server supplied message, when the body carried one
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Code)
}

// ServerMessage extracts the server supplied message from err, if any.
func ServerMessage(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Message
	}
	return ""
}

// Config configures the client.
type Config struct {
	BaseURL string        // API root, e.g. https://host/api
	Timeout time.Duration // Per-request timeout of the underlying http.Client
	// Throttle holds per-operation limits in calls per minute. Operations
	// without an entry are not throttled. Exceeding a limit fails fast with
	// ErrRateLimited without touching the network.
	Throttle map[string]int
}

// Client talks to the employee API. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	metrics    *metrics.Metrics
	limiters   map[string]*rate.Limiter
}

// NewClient validates cfg and creates a Client.
func NewClient(cfg Config, log *slog.Logger, appMetrics *metrics.Metrics) (*Client, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("failed to parse api base url: unsupported scheme %q", parsed.Scheme)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limiters := make(map[string]*rate.Limiter, len(cfg.Throttle))
	for op, perMinute := range cfg.Throttle {
		if perMinute <= 0 {
			continue
		}
		limiters[op] = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With("adapter", "employee_api"),
		metrics:    appMetrics,
		limiters:   limiters,
	}, nil
}

// do sends req and classifies the response. On success the caller owns resp.Body.
func (c *Client) do(ctx context.Context, op string, req *http.Request) (*http.Response, error) {
	start := time.Now()

	if limiter, ok := c.limiters[op]; ok && !limiter.Allow() {
		c.log.WarnContext(ctx, "Local throttle refused request", "operation", op)
		c.metrics.ObserveRequest(op, "rate_limited", time.Since(start))
		return nil, fmt.Errorf("%s: %w", op, ErrRateLimited)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	c.log.DebugContext(ctx, "API request", "operation", op, "method", req.Method, "url", req.URL.String(),
		"request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "API request failed", "operation", op, "request_id", requestID, "error", err)
		c.metrics.ObserveRequest(op, "error", time.Since(start))
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}

	c.log.DebugContext(ctx, "API response", "operation", op, "status", resp.StatusCode, "request_id", requestID)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		drain(resp)
		c.metrics.ObserveRequest(op, "rate_limited", time.Since(start))
		return nil, fmt.Errorf("%s: %w", op, ErrRateLimited)
	case resp.StatusCode == http.StatusNotFound && op == OpGet:
		drain(resp)
		c.metrics.ObserveRequest(op, "failed", time.Since(start))
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		statusErr := &StatusError{Op: op, Code: resp.StatusCode, Message: readMessage(resp)}
		c.metrics.ObserveRequest(op, "failed", time.Since(start))
		return nil, statusErr
	}

	c.metrics.ObserveRequest(op, "ok", time.Since(start))
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// readMessage extracts {"error": "..."} or {"detail": "..."} from an error body.
func readMessage(resp *http.Response) string {
	defer resp.Body.Close()

	const maxErrorBody = 64 << 10
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return ""
	}

	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err = json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Detail
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

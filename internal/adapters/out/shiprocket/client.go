// Package shiprocket implements the shipment provider port against the
// Shiprocket external API.
//
// The client authenticates with email/password, caches the bearer token and
// re-authenticates transparently when the carrier returns 401. Carrier
// refusals are classified into transient and rejected failures on the result
// structs; the Go error return is reserved for context cancellation and
// request construction problems.
package shiprocket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fulfillment/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	carrierRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Subsystem: "carrier",
		Name:      "requests_total",
		Help:      "Carrier API calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	carrierLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fulfillment",
		Subsystem: "carrier",
		Name:      "request_duration_seconds",
		Help:      "Carrier API call latency by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// tokenLifetime is how long a cached auth token is trusted. Shiprocket
// tokens expire after 10 days; refreshing a day early avoids racing the
// deadline.
const tokenLifetime = 9 * 24 * time.Hour

// Config holds the carrier connection settings.
type Config struct {
	BaseURL  string
	Email    string
	Password string
	Timeout  time.Duration
}

// Client talks to the Shiprocket external API.
// It is safe for concurrent use; the auth token is shared under a mutex.
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a carrier client. The token is fetched lazily on the
// first authenticated call.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		email:    cfg.Email,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With(slog.String("component", "shiprocket_client")),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// ensureToken returns a valid bearer token, logging in if the cached one is
// missing or about to expire.
func (c *Client) ensureToken(ctx context.Context) (string, *ports.Failure, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil, nil
	}

	var resp loginResponse
	failure, err := c.send(ctx, http.MethodPost, "/v1/external/auth/login", "",
		loginRequest{Email: c.email, Password: c.password}, &resp)
	if err != nil || failure != nil {
		return "", failure, err
	}
	if resp.Token == "" {
		return "", &ports.Failure{
			Kind:    ports.FailureTransient,
			Message: "login returned an empty token",
		}, nil
	}

	c.token = resp.Token
	c.tokenExpiry = time.Now().Add(tokenLifetime)
	c.logger.Info("carrier auth token refreshed")

	return c.token, nil, nil
}

// invalidateToken drops the cached token after a 401.
func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// do performs one authenticated carrier call, retrying once on 401 with a
// fresh token.
func (c *Client) do(ctx context.Context, operation, method, path string, body, out any) (*ports.Failure, error) {
	start := time.Now()
	failure, err := c.doAuthed(ctx, method, path, body, out)
	carrierLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		carrierRequests.WithLabelValues(operation, "error").Inc()
	case failure != nil && failure.Retryable():
		carrierRequests.WithLabelValues(operation, "transient").Inc()
	case failure != nil:
		carrierRequests.WithLabelValues(operation, "rejected").Inc()
	default:
		carrierRequests.WithLabelValues(operation, "ok").Inc()
	}

	if failure != nil {
		c.logger.Warn("carrier call failed",
			slog.String("operation", operation),
			slog.Int("status", failure.StatusCode),
			slog.String("message", failure.Message))
	}

	return failure, err
}

func (c *Client) doAuthed(ctx context.Context, method, path string, body, out any) (*ports.Failure, error) {
	token, failure, err := c.ensureToken(ctx)
	if err != nil || failure != nil {
		return failure, err
	}

	failure, err = c.send(ctx, method, path, token, body, out)
	if failure != nil && failure.StatusCode == http.StatusUnauthorized {
		c.invalidateToken()

		token, failure, err = c.ensureToken(ctx)
		if err != nil || failure != nil {
			return failure, err
		}
		failure, err = c.send(ctx, method, path, token, body, out)
	}

	return failure, err
}

// send performs a single HTTP exchange and classifies the response.
func (c *Client) send(ctx context.Context, method, path, token string, body, out any) (*ports.Failure, error) {
	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Network trouble and client-side timeouts are worth retrying.
		return &ports.Failure{
			Kind:    ports.FailureTransient,
			Message: err.Error(),
		}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil, nil
		}
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &ports.Failure{
				Kind:       ports.FailureTransient,
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("decode response: %v", err),
			}, nil
		}
		return nil, nil
	}

	return classify(resp), nil
}

// classify maps a non-2xx response to a failure.
func classify(resp *http.Response) *ports.Failure {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := string(raw)
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		message = apiErr.Message
	}

	kind := ports.FailureRejected
	if resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode >= 500 {
		kind = ports.FailureTransient
	}

	return &ports.Failure{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}

var _ ports.ShipmentProviderClient = (*Client)(nil)

package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/finlens/backend/pkg/logger"
)

// Client is an HTTP client wrapper with retry, rate limiting and logging
// ⭐ SSOT: 모든 외부 HTTP 요청은 이 클라이언트를 통해서만 수행
type Client struct {
	httpClient  *http.Client
	logger      *logger.Logger
	retryConfig RetryConfig
	limiter     *rate.Limiter
	userAgent   string
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Enabled      bool
}

// New creates a new HTTP client
func New(log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log,
		retryConfig: RetryConfig{
			MaxRetries:   3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     10 * time.Second,
			Enabled:      true,
		},
		userAgent: "finlens/1.0",
	}
}

// WithTimeout overrides the per request timeout
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithRetry configures retry behavior
func (c *Client) WithRetry(maxRetries int, initialDelay time.Duration) *Client {
	c.retryConfig.MaxRetries = maxRetries
	c.retryConfig.InitialDelay = initialDelay
	c.retryConfig.Enabled = true
	return c
}

// DisableRetry disables automatic retry
func (c *Client) DisableRetry() *Client {
	c.retryConfig.Enabled = false
	return c
}

// WithRateLimit caps outgoing requests to perMinute, allowing a burst of one
func (c *Client) WithRateLimit(perMinute int) *Client {
	if perMinute <= 0 {
		c.limiter = nil
		return c
	}
	c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	return c
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return c.do(req)
}

// GetBytes performs a GET request and returns the body of a 200 response
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}
	return body, nil
}

// GetJSON performs a GET request and decodes the JSON body into dest
func (c *Client) GetJSON(ctx context.Context, url string, dest interface{}) error {
	body, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode JSON failed: %w", err)
	}
	return nil
}

// do executes the request with rate limiting, retry logic and logging
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	startTime := time.Now()
	fields := map[string]interface{}{
		"method": req.Method,
		"host":   req.URL.Host,
		"path":   req.URL.Path,
	}

	var resp *http.Response
	var err error
	if c.retryConfig.Enabled {
		resp, err = c.doWithRetry(req)
	} else {
		resp, err = c.httpClient.Do(req)
	}

	fields["duration"] = time.Since(startTime)
	if err != nil {
		c.logger.WithFields(fields).WithError(err).Error("HTTP request failed")
		return nil, err
	}

	fields["status_code"] = resp.StatusCode
	c.logger.WithFields(fields).Debug("HTTP request completed")
	return resp, nil
}

// doWithRetry executes the request with exponential backoff retry
func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	delay := c.retryConfig.InitialDelay

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		resp, err = c.httpClient.Do(req)
		if err == nil && !IsRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		if attempt == c.retryConfig.MaxRetries {
			break
		}

		if err == nil {
			resp.Body.Close()
		}

		c.logger.WithFields(map[string]interface{}{
			"attempt": attempt + 1,
			"delay":   delay,
			"path":    req.URL.Path,
		}).Warn("Retrying HTTP request")

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.retryConfig.MaxDelay {
			delay = c.retryConfig.MaxDelay
		}
	}

	return resp, err
}

// IsRetryableStatus reports whether a status code should be retried
func IsRetryableStatus(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}

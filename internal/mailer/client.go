package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no email function URL is set.
var ErrNotConfigured = errors.New("email function url not configured")

// Message is the payload accepted by the email function. The function sends a
// formatted notification to To; an empty To means the operator address.
type Message struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Query string `json:"query"`
	To    string `json:"to"`
}

// HTTPError carries status and body for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("email function returned status=%d body=%s", e.StatusCode, e.Body)
}

// Client posts messages to the serverless email function. It only learns
// success or failure; there is no delivery tracking.
type Client struct {
	url         string
	operator    string
	httpClient  *http.Client
	maxAttempts int
	baseDelay   time.Duration
	logger      *zap.Logger
}

// Options configures a Client.
type Options struct {
	URL           string
	OperatorEmail string
	MaxAttempts   int
	Timeout       time.Duration
	BaseDelay     time.Duration
	HTTPClient    *http.Client
}

// NewClient builds a client.
func NewClient(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &Client{
		url:         strings.TrimSpace(opts.URL),
		operator:    opts.OperatorEmail,
		httpClient:  httpClient,
		maxAttempts: attempts,
		baseDelay:   baseDelay,
		logger:      logger,
	}
}

// Configured reports whether a function URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.url != ""
}

// Send delivers msg to msg.To, or to the operator when To is empty. 5xx, 429 and transport errors are
// retried with exponential backoff up to the configured attempts.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if msg.To == "" {
		msg.To = c.operator
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		lastErr = c.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || attempt == c.maxAttempts {
			break
		}
		c.logger.Warn("email function call failed; retrying",
			zap.Int("attempt", attempt), zap.Error(lastErr))
		if err := sleepBackoff(ctx, attempt, c.baseDelay); err != nil {
			return err
		}
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500 || httpErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}

func sleepBackoff(ctx context.Context, attempt int, base time.Duration) error {
	delay := base * time.Duration(1<<(attempt-1))
	delay += time.Duration(rand.Int63n(int64(base)/2 + 1))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

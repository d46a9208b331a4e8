package siem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"chronicle/internal/entry"
	"chronicle/internal/logging"
)

const userAgent = "Chronicle-Go/0.1.0"

const (
	// maxAttempts is the total number of delivery attempts per entry.
	maxAttempts = 3
	// baseBackoff is the delay after the first failed attempt; it doubles
	// after each subsequent failure.
	baseBackoff = 2 * time.Second
)

// Target describes one delivery destination, taken from a settings snapshot.
type Target struct {
	Endpoint string
	Token    string
	Envelope EnvelopeType
	Timeout  time.Duration
}

// Client posts entries to a collector with bounded retries.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	attempts   int
	backoff    time.Duration
	sleep      func(context.Context, time.Duration) error
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxAttempts overrides the total attempt count.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n >= 1 {
			c.attempts = n
		}
	}
}

// WithBaseBackoff overrides the first retry delay.
func WithBaseBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// WithSleep replaces the inter-attempt wait, letting tests observe delays
// without actually waiting.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// NewClient builds a delivery client. A nil logger degrades to no-op.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{},
		logger:     logging.NewComponentLogger(logger, "siem"),
		attempts:   maxAttempts,
		backoff:    baseBackoff,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Deliver posts e to the target, retrying transient failures with exponential
// backoff. It returns the number of attempts made and the last error when
// every attempt failed.
func (c *Client) Deliver(ctx context.Context, e *entry.Entry, target Target) (int, error) {
	body, contentType, err := EncodeEnvelope(e, target.Envelope)
	if err != nil {
		return 0, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		lastErr = c.post(ctx, target, body, contentType)
		if lastErr == nil {
			return attempt, nil
		}
		c.logger.Warn("siem delivery attempt failed",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", c.attempts),
			logging.String("endpoint", target.Endpoint),
			logging.Error(lastErr),
		)
		if attempt == c.attempts {
			break
		}
		delay := c.backoff << (attempt - 1)
		if err := c.sleep(ctx, delay); err != nil {
			return attempt, fmt.Errorf("delivery interrupted: %w", errors.Join(err, lastErr))
		}
	}
	return c.attempts, lastErr
}

func (c *Client) post(ctx context.Context, target Target, body []byte, contentType string) error {
	timeout := target.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, target.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build siem request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", contentType)
	if token := strings.TrimSpace(target.Token); token != "" {
		req.Header.Set("Authorization", authScheme(target.Envelope)+" "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to siem: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("siem returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// authScheme returns the Authorization scheme the collector expects. HEC
// collectors use the "Splunk" scheme; everything else takes a bearer token.
func authScheme(envelope EnvelopeType) string {
	if envelope == EnvelopeHEC {
		return "Splunk"
	}
	return "Bearer"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Package delivery implements the retrying webhook sender and the per-destination
// delivery engine that drains a draft through it.
package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const defaultRetryAfter = 5 * time.Second

// DeliveryError is returned once the retry budget for an item is exhausted.
type DeliveryError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// rateLimitedError signals a 429; it carries the server's Retry-After hint and
// never consumes the retry budget.
type rateLimitedError struct {
	retryAfter time.Duration
}

func (e *rateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.retryAfter)
}

// Sender posts buffered payloads with a fixed per-request timeout, exponential
// backoff on transient failures and unlimited rate-limit-aware retries.
type Sender struct {
	client       *http.Client
	maxRetries   int
	rateLimitPad time.Duration
	logger       *slog.Logger

	// sleep is swapped out in tests so retries don't take wall-clock time.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewSender(timeout time.Duration, maxRetries int, rateLimitPad time.Duration, logger *slog.Logger) *Sender {
	return &Sender{
		client:       &http.Client{Timeout: timeout},
		maxRetries:   maxRetries,
		rateLimitPad: rateLimitPad,
		logger:       logger,
		sleep:        sleepContext,
	}
}

// Send posts the payload to url, retrying transient failures (timeouts,
// network errors, non-2xx statuses) up to maxRetries times with 1s/2s/4s
// backoff. Rate-limit responses wait out the server's hint plus a fixed pad
// and retry without touching the attempt counter.
func (s *Sender) Send(ctx context.Context, url string, payload Request) error {
	attempt := 0
	for {
		err := s.post(ctx, url, payload)
		if err == nil {
			return nil
		}

		var rl *rateLimitedError
		if errors.As(err, &rl) {
			wait := rl.retryAfter + s.rateLimitPad
			s.logger.Warn("rate limited by destination", "url", url, "wait", wait)
			if serr := s.sleep(ctx, wait); serr != nil {
				return serr
			}
			continue
		}

		if attempt >= s.maxRetries {
			return &DeliveryError{URL: url, Attempts: attempt + 1, Err: err}
		}
		backoff := time.Duration(1<<attempt) * time.Second
		s.logger.Warn("send failed, will retry", "url", url, "attempt", attempt+1, "backoff", backoff, "error", err)
		if serr := s.sleep(ctx, backoff); serr != nil {
			return serr
		}
		attempt++
	}
}

func (s *Sender) post(ctx context.Context, url string, payload Request) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload.Body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", payload.ContentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &rateLimitedError{retryAfter: parseRetryAfter(resp)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	// drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)
	return nil
}

func parseRetryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return defaultRetryAfter
	}
	seconds, err := strconv.ParseFloat(header, 64)
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds * float64(time.Second))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

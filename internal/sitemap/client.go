package sitemap

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/oakmoth/sitescout/internal/observability"
)

// RetryPolicy bounds how often and for how long a fetch is retried.
type RetryPolicy struct {
	MaxRetries        int           // Number of retries after the initial attempt
	InitialBackoff    time.Duration // Delay before the first retry
	BackoffMultiplier float64       // Growth factor applied per retry
	MaxBackoff        time.Duration // Upper bound on any single delay
}

// DefaultRetryPolicy returns the policy used when callers supply none.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        5,
		InitialBackoff:    100 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}
}

// backoff returns the delay before retry number retry (1-based).
func (p RetryPolicy) backoff(retry int) time.Duration {
	delay := float64(p.InitialBackoff) * math.Pow(p.BackoffMultiplier, float64(retry-1))
	if ceiling := float64(p.MaxBackoff); delay > ceiling {
		delay = ceiling
	}
	return time.Duration(delay)
}

// retryableStatus reports whether a status code warrants another attempt.
// Rate limiting and transient server errors retry; other statuses are final.
func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryAfterDelay parses a Retry-After header expressed in whole seconds.
// Missing or unparsable values return false so the computed backoff applies.
func retryAfterDelay(header string) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}

	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds < 0 {
		return 0, false
	}

	return time.Duration(seconds) * time.Second, true
}

// Client wraps a Fetcher with retry and backoff handling.
type Client struct {
	fetcher Fetcher
}

// NewClient creates a retrying fetch client around the given Fetcher.
func NewClient(fetcher Fetcher) *Client {
	return &Client{fetcher: fetcher}
}

// Fetch performs a GET of targetURL under the supplied policy. Transport
// failures and retryable statuses are attempted up to MaxRetries+1 times with
// exponential backoff; a Retry-After header on the previous response overrides
// the computed delay. Waits block the calling goroutine.
func (c *Client) Fetch(ctx context.Context, targetURL string, policy RetryPolicy) FetchResult {
	start := time.Now()

	var result FetchResult
	attempts := 0

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := policy.backoff(attempt)
			if delay, ok := retryAfterDelay(result.RetryAfter); ok {
				wait = delay
			}

			log.Debug().
				Str("url", targetURL).
				Int("attempt", attempt+1).
				Dur("wait", wait).
				Msg("Retrying fetch after backoff")

			time.Sleep(wait)
		}

		result = c.fetcher.Fetch(targetURL)
		attempts = attempt + 1

		if result.Success {
			break
		}
		if result.Err == nil && !retryableStatus(result.StatusCode) {
			// Terminal status, further attempts would not change the outcome
			break
		}
	}

	observability.RecordFetch(ctx, result.StatusCode, attempts, time.Since(start))

	if !result.Success && (result.Err != nil || retryableStatus(result.StatusCode)) {
		if result.Err != nil {
			result.Err = fmt.Errorf("fetch failed after %d attempts: %w", attempts, result.Err)
		} else {
			result.Err = fmt.Errorf("fetch failed after %d attempts: status %d", attempts, result.StatusCode)
		}

		log.Warn().
			Int("status", result.StatusCode).
			Int("attempts", attempts).
			Str("url", targetURL).
			Msg("Fetch exhausted retries")
	}

	return result
}
